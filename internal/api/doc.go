// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package api provides HTTP routing and handlers using the Chi router.
//
// All endpoints respond with the models.APIResponse envelope. Routes are
// grouped under /api/v1 with per-group rate limiting and Prometheus
// instrumentation; /healthz and /metrics sit outside the group so probes
// and scrapers are never throttled.
package api
