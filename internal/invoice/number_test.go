package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBumpInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-00001", bumpInvoiceNumber("INV-2026-", ""))
	assert.Equal(t, "INV-2026-00008", bumpInvoiceNumber("INV-2026-", "INV-2026-00007"))

	// a deleted invoice leaves a gap; its number is never handed out again
	assert.Equal(t, "INV-2026-00100", bumpInvoiceNumber("INV-2026-", "INV-2026-00099"))

	// an unparseable stored number must not take the sequence down with it
	assert.Equal(t, "INV-2026-00001", bumpInvoiceNumber("INV-2026-", "INV-2026-draft"))
}
