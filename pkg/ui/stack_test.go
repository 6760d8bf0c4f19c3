package ui

import "testing"

func TestStack_Peek(t *testing.T) {
	t.Parallel()
	stk := stack{}

	// Confirm that an empty stack is the gallery
	if stk.Peek() != Gallery {
		t.Errorf("Expected %v got %v", Gallery, stk.Peek())
	}

	// Confirm that if we add this to the slice, it returns properly
	stk.s = append(stk.s, Settings)
	if stk.Peek() != Settings {
		t.Errorf("Expected %v got %v", Settings, stk.Peek())
	}
	// Confirm that Peek() didn't Pop()
	if len(stk.s) != 1 {
		t.Errorf("Expected %d got %d", 1, len(stk.s))
	}

	// Confirm that Peek returns the most recent addition
	stk.s = append(stk.s, FatalError)
	if stk.Peek() != FatalError {
		t.Errorf("Expected %d got %d", FatalError, stk.Peek())
	}
	if len(stk.s) != 2 {
		t.Errorf("Expected %d got %d", 2, len(stk.s))
	}

}

func TestStack_Pop(t *testing.T) {
	t.Parallel()
	sut := stack{}

	// Confirm that an empty stack is the gallery
	if sut.Pop() != Gallery {
		t.Errorf("Expected %d got %d", Gallery, sut.Peek())
	}

	// Confirm that if we add this to the slice, it returns properly
	sut.s = append(sut.s, Settings, FileSelect)
	if sut.Pop() != FileSelect {
		t.Errorf("Expected %d got %d", FileSelect, sut.Peek())
	}

	// Confirm that Pop() didn't Peek()
	if sut.Peek() != Settings {
		t.Errorf("Expected %d got %d", Settings, sut.Peek())
	}
	if len(sut.s) != 1 {
		t.Errorf("Expected %v got %v", []screen{Settings}, sut.s)
	}
}

func TestStack_Push(t *testing.T) {
	t.Parallel()
	sut := stack{}
	if len(sut.s) != 0 {
		t.Fatalf("stack not empty")
	}
	sut.Push(Preview)
	if len(sut.s) != 1 {
		t.Errorf("Expected %d got %d", 1, len(sut.s))
	}
	if sut.Peek() != Preview {
		t.Errorf("Expected %d got %d", Preview, sut.Peek())
	}

	// Confirm that Push goes on the top of the stack
	sut.Push(UploadConfirm)
	if len(sut.s) != 2 {
		t.Errorf("Expected %d got %d", 2, len(sut.s))
	}
	if sut.Peek() != UploadConfirm {
		t.Errorf("Expected %d got %d", UploadConfirm, sut.Peek())
	}
}

func TestStack_Clear(t *testing.T) {
	t.Parallel()
	sut := stack{}
	if len(sut.s) != 0 {
		t.Fatalf("stack not empty")
	}

	sut.Clear()
	if len(sut.s) != 0 {
		t.Errorf("stack not empty: %v", sut.s)
	}

	for i := range FatalError {
		for j := range i {
			sut.Push(j)
		}
		sut.Clear()
		if len(sut.s) != 0 {
			t.Errorf("stack not empty: %v", sut.s)
		}
	}
}

func TestScreen_String(t *testing.T) {
	t.Parallel()
	for i := range FatalError + 1 {
		if i.String() == "Unknown" {
			t.Errorf("%d has no name", i)
		}
	}
	if screen(-1).String() != "Unknown" {
		t.Errorf("Expected %q got %q", "Unknown", screen(-1).String())
	}
}
