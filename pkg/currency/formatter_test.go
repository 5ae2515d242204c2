package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "USD 450.50", Format(450.5, "USD"))
	assert.Equal(t, "USD 1,234,567.89", Format(1234567.891, "usd"))
	assert.Equal(t, "USD 0.00", Format(0, "USD"))
	assert.Equal(t, "-EUR 12.00", Format(-12, "EUR"))
	assert.Equal(t, "IDR 1.500.000", Format(1499999.6, "IDR"))
	assert.Equal(t, "999.99", Format(999.99, ""))
}
