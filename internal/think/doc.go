// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package think separates model reasoning from answer text in a live stream.
//
// Reasoning models wrap their chain of thought in <think>...</think> markers.
// The markers can arrive split across any number of stream fragments, so the
// Classifier keeps a small amount of state between calls and only classifies
// text once it is certain which side of a marker it belongs to.
//
// # Usage
//
//	c := think.New()
//	for fragment := range fragments {
//	    res := c.Process(fragment)
//	    for _, seg := range res.Segments {
//	        showThinking(seg)
//	    }
//	    fmt.Print(res.Answer)
//	}
//	res := c.Finalize() // flush anything left by a truncated stream
//
// Nested markers are not supported. An opening marker seen while a segment
// is already open is honoured only when its closing marker follows in the
// same fragment; otherwise it is discarded.
package think
