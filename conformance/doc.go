// Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Package conformance provides a data-driven test suite for vdbparam insert
// conversion. Each [Case] describes a collection schema, the columns a
// client supplies and the expected outcome: either a successful request
// with a given row count and vector dimensions, or an error of a given type
// whose message contains a given substring.
//
// Cases are YAML documents. The built-in suite is embedded and returned by
// [Builtin]; additional files can be read with [Load]. The
// vdbparam-conformance command runs a suite, writes every successful
// request as an Arrow IPC stream and can export traces and metrics through
// the OpenTelemetry stdout exporters.
package conformance
