package main

import "github.com/baechuer/org-calendar/internal/domain"

// defaultDepartments is the badge catalog the frontend colors events with.
// Seeding is idempotent, existing rows win.
var defaultDepartments = []domain.Department{
	{Name: "Student council", Color: "#e63946"},
	{Name: "Science", Color: "#457b9d"},
	{Name: "Culture", Color: "#f4a261"},
	{Name: "Sport", Color: "#2a9d8f"},
	{Name: "Media", Color: "#9b5de5"},
	{Name: "Volunteering", Color: "#ffb703"},
}
