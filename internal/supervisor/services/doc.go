// ShopRec - Product Recommendation Service
// Copyright 2026 ShopRec contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/shoprec/shoprec

// Package services provides suture.Service wrappers for application
// components: the HTTP server and the snapshot updater.
package services
