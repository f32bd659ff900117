package canon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeKeyStability(t *testing.T) {
	_, _, _, _, a := Canonicalize("123 Main Street", "Austin", "Texas", "78704-1234")
	_, _, _, _, b := Canonicalize("123 main st.", "austin", "TX", "78704")
	assert.Equal(t, a, b)
}

func TestCanonicalizeFields(t *testing.T) {
	l1, city, st, zip, key := Canonicalize("1201 Barton Hills Dr, Apt 4", "Austin", "TX", "78704")
	assert.Equal(t, "1201 BARTON HILLS DR", l1)
	assert.Equal(t, "AUSTIN", city)
	assert.Equal(t, "TX", st)
	assert.Equal(t, "78704", zip)
	assert.Equal(t, "1201 barton hills dr|austin|tx|78704", key)
}

func TestCanonicalizeUnitStripped(t *testing.T) {
	a, _, _, _, _ := Canonicalize("500 Oak Lane Unit 2B", "", "", "")
	b, _, _, _, _ := Canonicalize("500 Oak Ln", "", "", "")
	assert.Equal(t, b, a)
}

func TestKeyFromLatLon(t *testing.T) {
	assert.Equal(t, "geo:30.2672,-97.7431", KeyFromLatLon(30.26721, -97.74312))
	// nearby points round to the same cell
	assert.Equal(t, KeyFromLatLon(30.26720, -97.74310), KeyFromLatLon(30.26722, -97.74311))
}
