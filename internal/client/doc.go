// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the command-line client runtime.
//
// It maps a command and its operands onto [adapter.ServerAdapter] calls and
// prints the server's answers as JSON.
package client
