// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models manages the models installed on the Ollama server: listing
// them, resolving a menu choice, normalizing user-typed names and
// downloading new ones.
//
// # Usage
//
//	catalog := models.NewCatalog(client)
//	installed, err := catalog.Installed(ctx)
//	m, err := models.Pick(installed, input) // "" selects the first model
//
//	name, err := catalog.Download(ctx, "  Qwen3:4B ", func(p ollama.PullProgress) error {
//	    return nil
//	})
//	var nf *models.NotFoundError
//	if errors.As(err, &nf) {
//	    fmt.Println("did you mean", nf.Suggestions)
//	}
package models
