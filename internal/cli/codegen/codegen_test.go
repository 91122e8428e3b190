package codegen

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCode_Format(t *testing.T) {
	g := New(rand.NewPCG(1, 2))
	for i := 0; i < 2000; i++ {
		code := g.NewCode()
		if !assert.Truef(t, Valid(code), "bad code %q", code) {
			return
		}
	}
}

func TestNewCode_DefaultSource(t *testing.T) {
	code := New(nil).NewCode()
	assert.Regexp(t, `^ITM_[0-9A-F]{5}$`, code)
}

// zeroSource всегда отдаёт 0 - проверяем дополнение нулями до 5 символов.
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }

func TestNewCode_ZeroPadded(t *testing.T) {
	assert.Equal(t, "ITM_00000", New(zeroSource{}).NewCode())
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("ITM_0AF9C"))
	assert.False(t, Valid("ITM_0af9c"))
	assert.False(t, Valid("ITM_0AF9"))
	assert.False(t, Valid("ITM-0AF9C"))
}
