package ecs

const pageSize = 1024

// arena is a growable sequence of V whose elements never move once appended,
// so pointers handed out by push and at survive later pushes.
type arena[V any] struct {
	pages [][]V
	n     int
}

func (a *arena[V]) len() int {
	return a.n
}

func (a *arena[V]) push(v V) *V {
	page := a.n / pageSize
	if page == len(a.pages) {
		a.pages = append(a.pages, make([]V, 0, pageSize))
	}
	a.pages[page] = append(a.pages[page], v)
	a.n++
	return &a.pages[page][len(a.pages[page])-1]
}

func (a *arena[V]) at(i int) *V {
	return &a.pages[i/pageSize][i%pageSize]
}

// pop drops the last element. Emptied pages are kept for reuse.
func (a *arena[V]) pop() {
	if a.n == 0 {
		return
	}
	a.n--
	page := a.n / pageSize
	var zero V
	a.pages[page][a.n%pageSize] = zero
	a.pages[page] = a.pages[page][:a.n%pageSize]
}

func (a *arena[V]) reset() {
	a.pages = nil
	a.n = 0
}
