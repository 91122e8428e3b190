package codegen

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sync"
)

// Префикс каждого сгенерированного кода.
const Prefix = "ITM_"

// maxSuffix - верхняя граница (не включая) 5-значного hex-суффикса.
const maxSuffix = 0x100000

var codeRe = regexp.MustCompile(`^ITM_[0-9A-F]{5}$`)

// Valid сообщает, что code имеет вид ITM_XXXXX.
func Valid(code string) bool { return codeRe.MatchString(code) }

// Generator выдаёт короткие читаемые коды items. Коды не уникальны:
// коллизии допускаются, удалённое хранилище не опрашивается.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New возвращает генератор над src; при nil используется PCG со случайным seed.
func New(src rand.Source) *Generator {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Generator{rnd: rand.New(src)}
}

// NewCode возвращает "ITM_" и 5 hex-цифр в верхнем регистре.
func (g *Generator) NewCode() string {
	g.mu.Lock()
	n := g.rnd.IntN(maxSuffix)
	g.mu.Unlock()
	return fmt.Sprintf("%s%05X", Prefix, n)
}
