package typesystem

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Marshal encodes t as a protobuf Struct message.
func Marshal(t Type) ([]byte, error) {
	st, err := structpb.NewStruct(encode(t))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", t, err)
	}
	return proto.Marshal(st)
}

// Unmarshal decodes a type written by Marshal.
func Unmarshal(data []byte) (Type, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, fmt.Errorf("decoding type: %w", err)
	}
	return decode(st.AsMap())
}

func encode(t Type) map[string]any {
	switch x := t.(type) {
	case Void:
		return map[string]any{"kind": "void"}
	case Any:
		return map[string]any{"kind": "any"}
	case Existential:
		return map[string]any{"kind": "existential"}
	case Bool:
		return map[string]any{"kind": "bool"}
	case Int:
		return map[string]any{"kind": "int"}
	case Real:
		return map[string]any{"kind": "real"}
	case List:
		return map[string]any{"kind": "list", "elem": encode(x.Elem)}
	case Set:
		return map[string]any{"kind": "set", "elem": encode(x.Elem)}
	case Process:
		return map[string]any{"kind": "process", "elem": encode(x.Elem)}
	case Tuple:
		fields := make(map[string]any, len(x.Fields))
		for k, f := range x.Fields {
			fields[k] = encode(f)
		}
		return map[string]any{"kind": "tuple", "fields": fields}
	case Union:
		return map[string]any{"kind": "union", "bounds": encodeList(x.Bounds)}
	case Named:
		return map[string]any{"kind": "named", "module": x.Module, "name": x.Name, "type": encode(x.Type)}
	case Recursive:
		m := map[string]any{"kind": "recursive", "name": x.Name}
		if x.Body != nil {
			m["body"] = encode(x.Body)
		}
		return m
	case Fun:
		m := map[string]any{"kind": "fun", "params": encodeList(x.Params), "ret": encode(x.Ret)}
		if x.Receiver != nil {
			m["receiver"] = encode(x.Receiver)
		}
		return m
	}
	panic(fmt.Sprintf("typesystem: unhandled type %T", t))
}

func encodeList(ts []Type) []any {
	out := make([]any, len(ts))
	for i, t := range ts {
		out[i] = encode(t)
	}
	return out
}

func decode(m map[string]any) (Type, error) {
	kind, _ := m["kind"].(string)
	switch kind {
	case "void":
		return Void{}, nil
	case "any":
		return Any{}, nil
	case "existential":
		return Existential{}, nil
	case "bool":
		return Bool{}, nil
	case "int":
		return Int{}, nil
	case "real":
		return Real{}, nil
	case "list", "set", "process":
		elem, err := decodeField(m, "elem")
		if err != nil {
			return nil, err
		}
		switch kind {
		case "list":
			return List{Elem: elem}, nil
		case "set":
			return Set{Elem: elem}, nil
		}
		return Process{Elem: elem}, nil
	case "tuple":
		raw, _ := m["fields"].(map[string]any)
		fields := make(map[string]Type, len(raw))
		for k := range raw {
			f, err := decodeField(raw, k)
			if err != nil {
				return nil, err
			}
			fields[k] = f
		}
		return Tuple{Fields: fields}, nil
	case "union":
		bounds, err := decodeList(m, "bounds")
		if err != nil {
			return nil, err
		}
		return NewUnion(bounds...), nil
	case "named":
		inner, err := decodeField(m, "type")
		if err != nil {
			return nil, err
		}
		module, _ := m["module"].(string)
		name, _ := m["name"].(string)
		return Named{Module: module, Name: name, Type: inner}, nil
	case "recursive":
		name, _ := m["name"].(string)
		if _, ok := m["body"]; !ok {
			return Recursive{Name: name}, nil
		}
		body, err := decodeField(m, "body")
		if err != nil {
			return nil, err
		}
		return Recursive{Name: name, Body: body}, nil
	case "fun":
		params, err := decodeList(m, "params")
		if err != nil {
			return nil, err
		}
		ret, err := decodeField(m, "ret")
		if err != nil {
			return nil, err
		}
		fn := Fun{Params: params, Ret: ret}
		if _, ok := m["receiver"]; ok {
			if fn.Receiver, err = decodeField(m, "receiver"); err != nil {
				return nil, err
			}
		}
		return fn, nil
	}
	return nil, fmt.Errorf("decoding type: unknown kind %q", kind)
}

func decodeField(m map[string]any, key string) (Type, error) {
	sub, ok := m[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decoding type: field %q missing or malformed", key)
	}
	return decode(sub)
}

func decodeList(m map[string]any, key string) ([]Type, error) {
	raw, ok := m[key].([]any)
	if !ok {
		return nil, fmt.Errorf("decoding type: list %q missing or malformed", key)
	}
	out := make([]Type, len(raw))
	for i, r := range raw {
		sub, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decoding type: %s[%d] malformed", key, i)
		}
		t, err := decode(sub)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
