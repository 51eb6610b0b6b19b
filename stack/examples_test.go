package stack_test

import (
	"fmt"

	"github.com/crate-py/rpds/stack"
)

func ExampleNew() {
	s := stack.New(1, 2, 3)
	fmt.Println(s)
	// Output: [ 3 2 1 ]
}

func ExampleStack_Pop() {
	s := stack.New(1, 2, 3)
	s, err := s.Pop()
	if err != nil {
		panic(err)
	}
	fmt.Println(s)
	// Output: [ 2 1 ]
}

func ExampleStack_Peek() {
	top, err := stack.New(1, 2, 3).Peek()
	fmt.Println(top, err)
	_, err = stack.Empty().Peek()
	fmt.Println(err)
	// Output:
	// 3 <nil>
	// empty stack: nothing to peek
}
