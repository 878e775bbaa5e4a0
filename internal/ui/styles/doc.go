// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the colour palette and animation frames shared by the
chatnexus terminal surfaces.

All colours use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection:

  - Purple  - assistant output, the thinking panel border
  - Cyan    - brand colour, prompts, headings
  - Emerald - success messages, the active model
  - Amber   - warnings and hints
  - Rose    - errors

Text colours form a hierarchy: TextPrimary, TextSecondary, TextMuted.

# Usage Example

	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	s := spinner.New(spinner.WithSpinner(styles.LineSpinner))
*/
package styles
