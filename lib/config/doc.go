// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for passprompt.
//
// Configuration comes from a single optional file named by the
// PASSPROMPT_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There is no file discovery: without either, the
// built-in [Default] values apply.
//
// Variable expansion is performed on the agent program path after
// loading: ${HOME} and ${VAR:-default} patterns are expanded.
//
// One environment variable overrides file values:
// PASSPROMPT_DISABLE_PINENTRY=1 forces the terminal prompt. It is
// applied by [Config.ApplyEnvironment], which [Load] calls and which
// --config callers apply themselves.
//
// This package depends on no other passprompt packages.
package config
