package main

import (
	"reflect"
	"testing"

	"github.com/tjfontaine/react-app-plugin/internal/registration"
)

func TestModeCommands(t *testing.T) {
	registration.RegisterBuiltins()

	var names []string
	for _, c := range modeCommands() {
		names = append(names, c.Name)
		if c.Action == nil {
			t.Errorf("command %s has no action", c.Name)
		}
	}
	if want := []string{"build", "start", "test"}; !reflect.DeepEqual(names, want) {
		t.Errorf("commands = %v, want %v", names, want)
	}
}
