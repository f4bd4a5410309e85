// Package repository handles all interactions with the database.
//
// It contains the SQL and the explicit column mapping for each entity,
// keeping query details away from the service layer.
package repository
