package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/kbukum/routekit/exchange"
	"github.com/kbukum/routekit/route"
)

type jsonDecoder[T any] struct{}

// DecodeJSON returns a transform that decodes a Result (or a string or
// []byte body) into T.
func DecodeJSON[T any]() route.Processor {
	return &jsonDecoder[T]{}
}

func (d *jsonDecoder[T]) StageName() string { return "decode-json" }

func (d *jsonDecoder[T]) InType() reflect.Type  { return reflect.TypeFor[Result]() }
func (d *jsonDecoder[T]) OutType() reflect.Type { return reflect.TypeFor[T]() }

func (d *jsonDecoder[T]) Process(_ context.Context, ex *exchange.Exchange) (*exchange.Exchange, error) {
	var raw []byte
	switch b := ex.Body().(type) {
	case Result:
		raw = []byte(b.Body)
	case *Result:
		raw = []byte(b.Body)
	case string:
		raw = []byte(b)
	case []byte:
		raw = b
	default:
		return nil, fmt.Errorf("decode json: unsupported body %T", b)
	}

	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode json into %s: %w", reflect.TypeFor[T](), err)
	}
	return ex.WithBody(out), nil
}
