package service

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/BisonByte/vogue.bisonbyte.io/models"
)

const (
	maxClienteLen     = 255
	maxDescripcionLen = 1000
	maxNombreLen      = 255
	maxEnlaceLen      = 2000
	maxNotasLen       = 2000
)

// transactionPayload is the validated shape of an appended item. Unknown
// fields are preserved in the stored raw payload; validation only inspects
// the ones the ledger depends on.
type transactionPayload struct {
	Tipo        string   `json:"tipo"`
	Monto       *float64 `json:"monto"`
	Cliente     string   `json:"cliente"`
	Descripcion string   `json:"descripcion"`
}

// validateTransactionPayload checks an incoming item body: tipo is required,
// monto must be a non-negative number when present, and the free-text fields
// are length-capped. Every failure wraps ErrInvalidDataProvided.
func validateTransactionPayload(data json.RawMessage) (transactionPayload, error) {
	var payload transactionPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return transactionPayload{}, fmt.Errorf("%w: malformed transaction payload", ErrInvalidDataProvided)
	}

	if payload.Tipo == "" {
		return transactionPayload{}, fmt.Errorf("%w: tipo is required", ErrInvalidDataProvided)
	}
	if payload.Monto != nil && *payload.Monto < 0 {
		return transactionPayload{}, fmt.Errorf("%w: monto must not be negative", ErrInvalidDataProvided)
	}
	if utf8.RuneCountInString(payload.Cliente) > maxClienteLen {
		return transactionPayload{}, fmt.Errorf("%w: cliente exceeds %d characters", ErrInvalidDataProvided, maxClienteLen)
	}
	if utf8.RuneCountInString(payload.Descripcion) > maxDescripcionLen {
		return transactionPayload{}, fmt.Errorf("%w: descripcion exceeds %d characters", ErrInvalidDataProvided, maxDescripcionLen)
	}

	return payload, nil
}

// validateClient checks a client row before create/update.
func validateClient(c models.Client) error {
	if c.Nombre == "" {
		return fmt.Errorf("%w: nombre is required", ErrInvalidDataProvided)
	}
	if utf8.RuneCountInString(c.Nombre) > maxNombreLen {
		return fmt.Errorf("%w: nombre exceeds %d characters", ErrInvalidDataProvided, maxNombreLen)
	}
	if c.MontoPagado < 0 {
		return fmt.Errorf("%w: monto_pagado must not be negative", ErrInvalidDataProvided)
	}
	if utf8.RuneCountInString(c.ProductoEnlace) > maxEnlaceLen {
		return fmt.Errorf("%w: producto_enlace exceeds %d characters", ErrInvalidDataProvided, maxEnlaceLen)
	}
	if utf8.RuneCountInString(c.Notas) > maxNotasLen {
		return fmt.Errorf("%w: notas exceeds %d characters", ErrInvalidDataProvided, maxNotasLen)
	}

	return nil
}
