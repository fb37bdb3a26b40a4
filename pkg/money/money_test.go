package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromFloatRounds(t *testing.T) {
	assert.Equal(t, Cents(1050), FromFloat(10.50))
	assert.Equal(t, Cents(1000), FromFloat(10.0))
	assert.Equal(t, Cents(1), FromFloat(0.005))
	assert.Equal(t, Cents(29), FromFloat(0.29))
	// Classic float trap: 0.1+0.2 must land on 30 cents.
	assert.Equal(t, Cents(30), FromFloat(0.1+0.2))
}

func TestString(t *testing.T) {
	assert.Equal(t, "30.00", Cents(3000).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "1.50", Cents(150).String())
	assert.Equal(t, "-2.25", Cents(-225).String())
}

func TestMulAndFloat(t *testing.T) {
	assert.Equal(t, Cents(3000), Cents(1000).Mul(3))
	assert.Equal(t, 20.0, Cents(2000).Float())
}
