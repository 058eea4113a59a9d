package syntax

type frame[T TokenKind, E ElementKind] struct {
	node   *GreenNode[T, E]
	offset int
	index  int
}

// Cursor walks a green tree while tracking absolute offsets. Ancestors are
// kept on an explicit stack, so the tree itself needs no parent pointers.
type Cursor[T TokenKind, E ElementKind] struct {
	stack   []frame[T, E]
	current GreenChild[T, E]
	offset  int
}

func NewCursor[T TokenKind, E ElementKind](root *GreenNode[T, E]) *Cursor[T, E] {
	return &Cursor[T, E]{current: NodeChild(root)}
}

// Current returns the element under the cursor.
func (c *Cursor[T, E]) Current() RedChild[T, E] {
	return RedChild[T, E]{Green: c.current, Offset: c.offset}
}

func (c *Cursor[T, E]) Offset() int {
	return c.offset
}

func (c *Cursor[T, E]) EndOffset() int {
	return c.offset + c.current.Len()
}

// Depth is 0 at the root.
func (c *Cursor[T, E]) Depth() int {
	return len(c.stack)
}

// Parent returns the node containing the current element.
func (c *Cursor[T, E]) Parent() (RedNode[T, E], bool) {
	if len(c.stack) == 0 {
		return RedNode[T, E]{}, false
	}
	top := c.stack[len(c.stack)-1]
	return RedNode[T, E]{Green: top.node, Offset: top.offset}, true
}

// Ancestors returns the enclosing nodes, innermost first.
func (c *Cursor[T, E]) Ancestors() []RedNode[T, E] {
	out := make([]RedNode[T, E], 0, len(c.stack))
	for i := len(c.stack) - 1; i >= 0; i-- {
		out = append(out, RedNode[T, E]{Green: c.stack[i].node, Offset: c.stack[i].offset})
	}
	return out
}

// StepInto moves to the first child of the current node.
func (c *Cursor[T, E]) StepInto() bool {
	n := c.current.Node
	if n == nil || len(n.children) == 0 {
		return false
	}
	c.stack = append(c.stack, frame[T, E]{node: n, offset: c.offset})
	c.current = n.children[0]
	return true
}

// StepOver moves to the next sibling.
func (c *Cursor[T, E]) StepOver() bool {
	if len(c.stack) == 0 {
		return false
	}
	top := &c.stack[len(c.stack)-1]
	if top.index+1 >= len(top.node.children) {
		return false
	}
	c.offset += c.current.Len()
	top.index++
	c.current = top.node.children[top.index]
	return true
}

// StepOut moves to the parent node.
func (c *Cursor[T, E]) StepOut() bool {
	if len(c.stack) == 0 {
		return false
	}
	top := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.current = NodeChild(top.node)
	c.offset = top.offset
	return true
}

// Step advances in pre-order. It returns false once the walk is complete,
// leaving the cursor on the root.
func (c *Cursor[T, E]) Step() bool {
	if c.StepInto() {
		return true
	}
	return c.StepNext()
}

// StepNext advances in pre-order without entering the current element.
func (c *Cursor[T, E]) StepNext() bool {
	for {
		if c.StepOver() {
			return true
		}
		if !c.StepOut() {
			return false
		}
	}
}
