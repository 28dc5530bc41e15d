// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package config

import "github.com/z5labs/beacon/config/key"

// Map is an ordinary map[string]any but implements the [Source] and
// [Store] interfaces.
type Map map[string]any

// Apply implements the [Source] interface. It recursively walks the
// underlying map to find key value pairs to set on the given store.
func (m Map) Apply(store Store) error {
	return walkMap(m, store, nil)
}

func walkMap(m map[string]any, store Store, chain key.Chain) error {
	for k, v := range m {
		switch x := v.(type) {
		case Map:
			err := walkMap(x, store, append(chain, key.Name(k)))
			if err != nil {
				return err
			}
		case map[string]any:
			err := walkMap(x, store, append(chain, key.Name(k)))
			if err != nil {
				return err
			}
		default:
			err := store.Set(append(chain, key.Name(k)), x)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// Set implements the [Store] interface. Nested keys are stored as
// nested maps.
func (m Map) Set(k key.Keyer, v any) error {
	switch x := k.(type) {
	case key.Chain:
		return setKeyChain(m, x, v)
	default:
		m[x.Key()] = v
		return nil
	}
}

func setKeyChain(m Map, chain key.Chain, v any) error {
	if len(chain) == 0 {
		return nil
	}
	if len(chain) == 1 {
		return m.Set(chain[0], v)
	}

	k := chain[0].Key()
	sub, ok := m[k].(Map)
	if !ok {
		sub = make(Map)
		m[k] = sub
	}
	return sub.Set(chain[1:], v)
}
