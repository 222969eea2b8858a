// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package middleware provides http.HandlerFunc middleware shared by the API
// layer: request ID propagation and Prometheus request instrumentation.
package middleware
