package models

import "time"

// Client is a structured row of the clients table. The same business data
// also circulates as a Record inside the vogue_clientes collection value;
// the table is the server-of-record representation used by the client CRUD
// endpoints.
type Client struct {
	// ID is the server-assigned identifier.
	ID int64 `json:"id"`

	// Nombre is the client's display name. Required.
	Nombre string `json:"nombre"`

	// ProductoEnlace is an optional link to the ordered product.
	ProductoEnlace string `json:"producto_enlace,omitempty"`

	// MontoPagado is the amount paid so far. Never negative.
	MontoPagado float64 `json:"monto_pagado"`

	// DireccionEnvio is the shipping address.
	DireccionEnvio string `json:"direccion_envio,omitempty"`

	// Notas holds free-form notes.
	Notas string `json:"notas,omitempty"`

	// CreatedAtMs is the creation time in Unix milliseconds, as reported by
	// the device that created the record.
	CreatedAtMs int64 `json:"created_at_ms"`

	// UpdatedAt is the server-side time of the last modification.
	UpdatedAt time.Time `json:"-"`
}

// TableName returns the name of the database table
// associated with the Client model.
func (c Client) TableName() string {
	return "clients"
}
