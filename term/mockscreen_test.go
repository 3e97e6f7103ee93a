package term

// mockscreen_test.go provides a test double for Screen, the same way
// loopback_test.go's memWriter/recvHandler mock xfer.FileHandler: a
// plain in-memory cell grid plus a recorded reply buffer, with no
// behavior beyond what the parser itself drives.

type cell struct {
	r    rune
	attr Attr
}

type mockScreen struct {
	w, h     int
	grid     [][]cell
	curX     int
	curY     int
	replies  []byte
	bells    int
	modesSet map[int]bool
	resets   int
}

func newMockScreen(w, h int) *mockScreen {
	m := &mockScreen{w: w, h: h, modesSet: map[int]bool{}}
	m.grid = make([][]cell, h)
	for i := range m.grid {
		m.grid[i] = make([]cell, w)
		for j := range m.grid[i] {
			m.grid[i][j] = cell{r: ' '}
		}
	}
	return m
}

func (m *mockScreen) Resize() (int, int) { return m.w, m.h }

func (m *mockScreen) MoveCursor(x, y int) { m.curX, m.curY = x, y }
func (m *mockScreen) CursorPosition() (int, int) { return m.curX, m.curY }

func (m *mockScreen) Put(r rune, attr Attr) {
	if m.curY >= 0 && m.curY < m.h && m.curX >= 0 && m.curX < m.w {
		m.grid[m.curY][m.curX] = cell{r: r, attr: attr}
	}
}

func (m *mockScreen) Erase(mode EraseMode, x, y int) {
	switch mode {
	case EraseToEnd:
		m.clearSpan(y, x, m.w-1)
		for row := y + 1; row < m.h; row++ {
			m.clearSpan(row, 0, m.w-1)
		}
	case EraseToStart:
		m.clearSpan(y, 0, x)
		for row := 0; row < y; row++ {
			m.clearSpan(row, 0, m.w-1)
		}
	case EraseAll, EraseScrollback:
		for row := 0; row < m.h; row++ {
			m.clearSpan(row, 0, m.w-1)
		}
	}
}

func (m *mockScreen) EraseLine(mode EraseMode, x, y int) {
	switch mode {
	case EraseToEnd:
		m.clearSpan(y, x, m.w-1)
	case EraseToStart:
		m.clearSpan(y, 0, x)
	case EraseAll:
		m.clearSpan(y, 0, m.w-1)
	}
}

func (m *mockScreen) clearSpan(row, from, to int) {
	if row < 0 || row >= m.h {
		return
	}
	for x := from; x <= to && x < m.w; x++ {
		if x >= 0 {
			m.grid[row][x] = cell{r: ' '}
		}
	}
}

func (m *mockScreen) InsertLines(n int) {
	for ; n > 0; n-- {
		copy(m.grid[m.curY+1:], m.grid[m.curY:len(m.grid)-1])
		m.grid[m.curY] = make([]cell, m.w)
		for i := range m.grid[m.curY] {
			m.grid[m.curY][i] = cell{r: ' '}
		}
	}
}

func (m *mockScreen) DeleteLines(n int) {
	for ; n > 0; n-- {
		copy(m.grid[m.curY:], m.grid[m.curY+1:])
		last := len(m.grid) - 1
		m.grid[last] = make([]cell, m.w)
		for i := range m.grid[last] {
			m.grid[last][i] = cell{r: ' '}
		}
	}
}

func (m *mockScreen) InsertChars(n int) {
	row := m.grid[m.curY]
	copy(row[m.curX+n:], row[m.curX:])
	for i := m.curX; i < m.curX+n && i < len(row); i++ {
		row[i] = cell{r: ' '}
	}
}

func (m *mockScreen) DeleteChars(n int) {
	row := m.grid[m.curY]
	copy(row[m.curX:], row[m.curX+n:])
	for i := len(row) - n; i < len(row); i++ {
		if i >= 0 {
			row[i] = cell{r: ' '}
		}
	}
}

func (m *mockScreen) ScrollUp(top, bot, n int) {
	for ; n > 0; n-- {
		copy(m.grid[top:bot+1], m.grid[top+1:bot+1])
		m.grid[bot] = make([]cell, m.w)
		for i := range m.grid[bot] {
			m.grid[bot][i] = cell{r: ' '}
		}
	}
}

func (m *mockScreen) ScrollDown(top, bot, n int) {
	for ; n > 0; n-- {
		copy(m.grid[top+1:bot+1], m.grid[top:bot])
		m.grid[top] = make([]cell, m.w)
		for i := range m.grid[top] {
			m.grid[top][i] = cell{r: ' '}
		}
	}
}

func (m *mockScreen) SetMode(mode int, dec bool)   { m.modesSet[mode] = true }
func (m *mockScreen) ResetMode(mode int, dec bool) { m.modesSet[mode] = false }

func (m *mockScreen) Bell() { m.bells++ }

func (m *mockScreen) Reply(b []byte) { m.replies = append(m.replies, b...) }

func (m *mockScreen) Reset() {
	m.resets++
	for row := 0; row < m.h; row++ {
		m.clearSpan(row, 0, m.w-1)
	}
	m.curX, m.curY = 0, 0
}

func (m *mockScreen) text(row int) string {
	var out []rune
	for _, c := range m.grid[row] {
		out = append(out, c.r)
	}
	return string(out)
}
