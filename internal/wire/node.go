package wire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/roach88/bandwire/internal/model"
)

// toNode converts a Value into its tagged JSON tree.
func toNode(v Value) (map[string]any, error) {
	var payload any
	switch val := v.(type) {
	case Int:
		payload = int64(val)
	case Float:
		n, err := floatNumber(float64(val))
		if err != nil {
			return nil, err
		}
		payload = n
	case String:
		payload = string(val)
	case Bool:
		payload = bool(val)
	case Band:
		node, err := bandNode(model.Band(val))
		if err != nil {
			return nil, err
		}
		payload = node
	case Bands:
		list := make([]any, len(val))
		for i, b := range val {
			node, err := bandNode(b)
			if err != nil {
				return nil, fmt.Errorf("bands[%d]: %w", i, err)
			}
			list[i] = node
		}
		payload = list
	case nil:
		return nil, fmt.Errorf("nil value cannot be encoded")
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
	return map[string]any{
		"kind":  string(v.Kind()),
		"value": payload,
	}, nil
}

// ToNodes converts a list of values for embedding in an envelope.
func ToNodes(vals []Value) ([]any, error) {
	out := make([]any, len(vals))
	for i, v := range vals {
		node, err := toNode(v)
		if err != nil {
			return nil, fmt.Errorf("value[%d]: %w", i, err)
		}
		out[i] = node
	}
	return out, nil
}

func bandNode(b model.Band) (map[string]any, error) {
	y, err := floatNumber(b.Coordinates.Y)
	if err != nil {
		return nil, fmt.Errorf("coordinates.y: %w", err)
	}
	node := map[string]any{
		"id":   b.ID,
		"name": b.Name,
		"coordinates": map[string]any{
			"x": b.Coordinates.X,
			"y": y,
		},
		"number_of_participants": b.NumberOfParticipants,
		"albums_count":           b.AlbumsCount,
	}
	if !b.CreationDate.IsZero() {
		node["creation_date"] = b.CreationDate.UTC().Format(time.RFC3339Nano)
	}
	if b.Genre != "" {
		node["genre"] = string(b.Genre)
	}
	if b.BestAlbum != nil {
		node["best_album"] = map[string]any{
			"name":   b.BestAlbum.Name,
			"length": b.BestAlbum.Length,
		}
	}
	return node, nil
}

// FromNode converts a decoded JSON tree (decoded with UseNumber) back into a Value.
func FromNode(node any) (Value, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("value must be an object, got %T", node)
	}
	kind, err := stringField(obj, "kind")
	if err != nil {
		return nil, err
	}
	raw, ok := obj["value"]
	if !ok {
		return nil, fmt.Errorf("value of kind %q has no payload", kind)
	}
	if len(obj) != 2 {
		return nil, fmt.Errorf("value of kind %q has unexpected fields", kind)
	}

	switch Kind(kind) {
	case KindInt:
		n, err := asInt(raw)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case KindFloat:
		f, err := asFloat(raw)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("string payload has type %T", raw)
		}
		return String(s), nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("bool payload has type %T", raw)
		}
		return Bool(b), nil
	case KindBand:
		b, err := bandFromNode(raw)
		if err != nil {
			return nil, err
		}
		return Band(b), nil
	case KindBands:
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("bands payload has type %T", raw)
		}
		out := make(Bands, len(list))
		for i, elem := range list {
			b, err := bandFromNode(elem)
			if err != nil {
				return nil, fmt.Errorf("bands[%d]: %w", i, err)
			}
			out[i] = b
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", kind)
	}
}

// FromNodes converts a decoded JSON array into values.
func FromNodes(node any) ([]Value, error) {
	if node == nil {
		return []Value{}, nil
	}
	list, ok := node.([]any)
	if !ok {
		return nil, fmt.Errorf("value list must be an array, got %T", node)
	}
	out := make([]Value, len(list))
	for i, elem := range list {
		v, err := FromNode(elem)
		if err != nil {
			return nil, fmt.Errorf("value[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func bandFromNode(node any) (model.Band, error) {
	obj, ok := node.(map[string]any)
	if !ok {
		return model.Band{}, fmt.Errorf("band must be an object, got %T", node)
	}
	var b model.Band
	var err error
	if b.ID, err = intField(obj, "id"); err != nil {
		return model.Band{}, err
	}
	if b.Name, err = stringField(obj, "name"); err != nil {
		return model.Band{}, err
	}
	if b.NumberOfParticipants, err = intField(obj, "number_of_participants"); err != nil {
		return model.Band{}, err
	}
	if b.AlbumsCount, err = intField(obj, "albums_count"); err != nil {
		return model.Band{}, err
	}

	coords, ok := obj["coordinates"].(map[string]any)
	if !ok {
		return model.Band{}, fmt.Errorf("band field %q missing or not an object", "coordinates")
	}
	if b.Coordinates.X, err = intField(coords, "x"); err != nil {
		return model.Band{}, fmt.Errorf("coordinates: %w", err)
	}
	if b.Coordinates.Y, err = asFloat(coords["y"]); err != nil {
		return model.Band{}, fmt.Errorf("coordinates.y: %w", err)
	}

	if raw, ok := obj["creation_date"]; ok {
		s, ok := raw.(string)
		if !ok {
			return model.Band{}, fmt.Errorf("creation_date has type %T", raw)
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return model.Band{}, fmt.Errorf("creation_date: %w", err)
		}
		b.CreationDate = t.UTC()
	}
	if raw, ok := obj["genre"]; ok {
		s, ok := raw.(string)
		if !ok {
			return model.Band{}, fmt.Errorf("genre has type %T", raw)
		}
		b.Genre = model.Genre(s)
	}
	if raw, ok := obj["best_album"]; ok {
		album, ok := raw.(map[string]any)
		if !ok {
			return model.Band{}, fmt.Errorf("best_album has type %T", raw)
		}
		name, err := stringField(album, "name")
		if err != nil {
			return model.Band{}, fmt.Errorf("best_album: %w", err)
		}
		length, err := intField(album, "length")
		if err != nil {
			return model.Band{}, fmt.Errorf("best_album: %w", err)
		}
		b.BestAlbum = &model.Album{Name: name, Length: length}
	}
	return b, nil
}

func stringField(obj map[string]any, key string) (string, error) {
	raw, ok := obj[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("field %q has type %T, want string", key, raw)
	}
	return s, nil
}

func intField(obj map[string]any, key string) (int64, error) {
	raw, ok := obj[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	n, err := asInt(raw)
	if err != nil {
		return 0, fmt.Errorf("field %q: %w", key, err)
	}
	return n, nil
}

func asInt(raw any) (int64, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
	n, err := strconv.ParseInt(string(num), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer, got %s", num)
	}
	return n, nil
}

func asFloat(raw any) (float64, error) {
	num, ok := raw.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected number, got %T", raw)
	}
	f, err := strconv.ParseFloat(string(num), 64)
	if err != nil {
		return 0, fmt.Errorf("expected number, got %s", num)
	}
	return f, nil
}
