package room

// CursorColors is the fixed pool of cursor skins. The first entry doubles as the shared fallback.
var CursorColors = []string{"blue", "green", "orange", "pink", "purple", "red", "white", "yellow"}

// CursorPool hands out cursor skins so that no two players hold the same one while the pool lasts.
type CursorPool struct {
	tokens []string
	inUse  map[string]bool
}

func NewCursorPool() *CursorPool {
	return &CursorPool{
		tokens: CursorColors,
		inUse:  make(map[string]bool, len(CursorColors)),
	}
}

// Acquire returns the first free token. When none is free it returns the fallback token and
// unique=false; the fallback is then shared and not marked as taken a second time.
func (p *CursorPool) Acquire() (token string, unique bool) {
	for _, t := range p.tokens {
		if !p.inUse[t] {
			p.inUse[t] = true
			return t, true
		}
	}
	return p.tokens[0], false
}

// Release returns token to the pool. Releasing a shared fallback is a no-op so the player that
// genuinely holds it keeps it.
func (p *CursorPool) Release(token string, shared bool) {
	if shared {
		return
	}
	delete(p.inUse, token)
}

// Free lists tokens nobody holds, in pool order.
func (p *CursorPool) Free() []string {
	var out []string
	for _, t := range p.tokens {
		if !p.inUse[t] {
			out = append(out, t)
		}
	}
	return out
}
