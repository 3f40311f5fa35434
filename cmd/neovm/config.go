package main

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/onyx-protocol/neovm/env"
	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/interop"
	"github.com/onyx-protocol/neovm/protocol/vm"
)

var errConfig = errors.New("bad config")

type config struct {
	Limits    vm.Limits        `toml:"limits"`
	CallFlags string           `toml:"call_flags"`
	Trace     traceConfig      `toml:"trace"`
	Contracts []contractConfig `toml:"contracts"`
}

type traceConfig struct {
	File    string `toml:"file"`
	MaxSize int    `toml:"max_size"`
	Keep    int    `toml:"keep"`
}

// contractConfig is a contract preloaded into the script store,
// given either as hex bytecode or as assembly.
type contractConfig struct {
	Script  string         `toml:"script"`
	Asm     string         `toml:"asm"`
	Methods map[string]int `toml:"methods"`
}

func defaultConfig() *config {
	return &config{
		Limits:    vm.DefaultLimits,
		CallFlags: vm.AllCallFlags.String(),
		Trace:     traceConfig{MaxSize: 10e6, Keep: 3},
	}
}

// loadConfig reads the TOML file at path over the defaults.
// An empty path yields the defaults.
func loadConfig(path string) (*config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, errors.WithDetailf(errConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return c, nil
}

// registerEnv arranges for env.Parse to override c's limits
// from NEOVM_* environment variables.
func registerEnv(c *config) {
	l := &c.Limits
	env.IntVar(&l.MaxShift, "NEOVM_MAX_SHIFT", l.MaxShift)
	env.IntVar(&l.MaxStackSize, "NEOVM_MAX_STACK_SIZE", l.MaxStackSize)
	env.IntVar(&l.MaxItemSize, "NEOVM_MAX_ITEM_SIZE", l.MaxItemSize)
	env.IntVar(&l.MaxComparableSize, "NEOVM_MAX_COMPARABLE_SIZE", l.MaxComparableSize)
	env.IntVar(&l.MaxInvocationStackSize, "NEOVM_MAX_INVOCATION_STACK_SIZE", l.MaxInvocationStackSize)
	env.IntVar(&l.MaxTryNestingDepth, "NEOVM_MAX_TRY_NESTING_DEPTH", l.MaxTryNestingDepth)
	env.BoolVar(&l.CatchEngineExceptions, "NEOVM_CATCH_ENGINE_EXCEPTIONS", l.CatchEngineExceptions)
}

// store returns a script store holding c's contracts.
func (c *config) store() (*interop.MemStore, error) {
	store := interop.NewMemStore()
	for i, cc := range c.Contracts {
		var (
			b   []byte
			err error
		)
		switch {
		case cc.Script != "" && cc.Asm != "":
			return nil, errors.WithDetailf(errConfig, "contract %d has both script and asm", i)
		case cc.Script != "":
			b, err = hex.DecodeString(cc.Script)
		default:
			b, err = vm.Assemble(cc.Asm)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "contract %d", i)
		}
		script, err := vm.NewScript(b, true)
		if err != nil {
			return nil, errors.Wrapf(err, "contract %d", i)
		}
		for name, off := range cc.Methods {
			if off < 0 || off >= script.Len() {
				return nil, errors.WithDetailf(errConfig, "contract %d: method %s offset %d out of range", i, name, off)
			}
		}
		store.Put(&interop.Contract{Script: script, Methods: cc.Methods})
	}
	return store, nil
}
