// Package env converts environment variables into Go data. It is
// similar in design to package flag: variables are registered
// first and assigned when Parse is called.
//
// The neovm command registers its execution limits here
// (NEOVM_MAX_STACK_SIZE and friends) so that they can be tuned
// without a config file.
package env

import (
	"log"
	"os"
	"strconv"
)

// funcs holds one setter per registered variable.
var funcs []func() bool

// define registers name. If it is set and non-empty at Parse
// time, set is called with its value.
func define(name string, set func(s string) error) {
	funcs = append(funcs, func() bool {
		s := os.Getenv(name)
		if s == "" {
			return true
		}
		if err := set(s); err != nil {
			log.Println(name, err)
			return false
		}
		return true
	})
}

// IntVar defines an int var with the specified name and default
// value. The argument p points to an int variable in which to
// store the value of the environment var.
func IntVar(p *int, name string, value int) {
	*p = value
	define(name, func(s string) error {
		v, err := strconv.Atoi(s)
		if err == nil {
			*p = v
		}
		return err
	})
}

// Int is like IntVar but returns a new int pointer.
func Int(name string, value int) *int {
	p := new(int)
	IntVar(p, name, value)
	return p
}

// BoolVar defines a bool var, parsed with strconv.ParseBool.
func BoolVar(p *bool, name string, value bool) {
	*p = value
	define(name, func(s string) error {
		v, err := strconv.ParseBool(s)
		if err == nil {
			*p = v
		}
		return err
	})
}

// Parse assigns every registered variable that is set in the
// environment. If any value cannot be parsed, Parse logs each
// failure and exits the process with status 1. A variable that
// fails to parse keeps its default.
func Parse() {
	if !parse() {
		os.Exit(1)
	}
}

func parse() bool {
	ok := true
	for _, f := range funcs {
		ok = f() && ok
	}
	return ok
}
