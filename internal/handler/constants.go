// Copyright (c) 2026 Camille Morel
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler wires HTTP routes to the content services: the
// public portfolio pages, the admin dashboard and the backup
// import/export endpoints.
package handler

// Route constants used across handlers.
const (
	RouteRoot    = "/"
	RouteGallery = "/galerie"
	RouteContact = "/contact"

	redirectAdmin = "/admin"
	redirectLogin = "/admin/login"
)

// Session key for storing the authenticated user ID.
const SessionKeyUserID = "user_id"
