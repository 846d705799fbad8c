package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnknownUserIsIdle(t *testing.T) {
	s := NewStore()
	assert.Equal(t, StateIdle, s.State(123))
	assert.Equal(t, Form{}, s.Form(123))
}

func TestSetStateAndForm(t *testing.T) {
	s := NewStore()

	s.SetState(1, StateOrderName)
	assert.Equal(t, StateOrderName, s.State(1))
	assert.Equal(t, StateIdle, s.State(2))

	s.UpdateForm(1, func(f *Form) { f.Name = "Иван" })
	s.UpdateForm(1, func(f *Form) { f.Phone = "+375 (29) 123-45-67" })

	form := s.Form(1)
	assert.Equal(t, "Иван", form.Name)
	assert.Equal(t, "+375 (29) 123-45-67", form.Phone)
}

func TestUpdateFormCreatesSession(t *testing.T) {
	s := NewStore()

	s.UpdateForm(1, func(f *Form) { f.CategoryKey = "hats" })
	assert.Equal(t, StateIdle, s.State(1))
	assert.Equal(t, "hats", s.Form(1).CategoryKey)
}

func TestClearWipesStateAndForm(t *testing.T) {
	s := NewStore()

	s.SetState(1, StateAddPhoto)
	s.UpdateForm(1, func(f *Form) { f.ProductName = "Cap" })

	s.Clear(1)
	assert.Equal(t, StateIdle, s.State(1))
	assert.Equal(t, Form{}, s.Form(1))
}
