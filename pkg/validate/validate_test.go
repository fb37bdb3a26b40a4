package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type input struct {
	Nombre string  `json:"nombre" validate:"required,min=2,max=10"`
	Email  string  `json:"email" validate:"required,email"`
	Precio float64 `json:"precio" validate:"required,gte=0"`
	Stock  int     `json:"stock" validate:"gte=0,lte=1000"`
}

func TestStructValid(t *testing.T) {
	errs := Struct(input{Nombre: "Ron", Email: "a@b.com", Precio: 9.5, Stock: 10})
	assert.False(t, HasErrors(errs))
}

func TestStructCollectsFieldErrors(t *testing.T) {
	errs := Struct(input{Nombre: "R", Email: "nope", Precio: 0, Stock: -1})

	assert.Equal(t, "must be at least 2", errs["nombre"])
	assert.Equal(t, "must be a valid email address", errs["email"])
	assert.Equal(t, "is required", errs["precio"])
	assert.Equal(t, "must be at least 0", errs["stock"])
}

func TestStructWithPointer(t *testing.T) {
	errs := Struct(&input{Nombre: "Pilsener x", Email: "a@b.com", Precio: 1.5})
	assert.False(t, HasErrors(errs))
}

func TestKeysUseJSONTagNames(t *testing.T) {
	errs := Struct(input{})
	_, ok := errs["nombre"]
	assert.True(t, ok)
	_, ok = errs["Nombre"]
	assert.False(t, ok)
}
