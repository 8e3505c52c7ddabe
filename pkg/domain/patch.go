package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Diff computes the JSON merge-patch (RFC 7396) that turns before into after.
// Keys absent from after map to nil. Nested objects are diffed recursively;
// arrays and scalars are replaced whole.
func Diff[T any](before, after T) (map[string]any, error) {
	b, err := toObject(before)
	if err != nil {
		return nil, err
	}
	a, err := toObject(after)
	if err != nil {
		return nil, err
	}
	return diffObjects(b, a), nil
}

func diffObjects(before, after map[string]any) map[string]any {
	patch := map[string]any{}
	for k, av := range after {
		bv, ok := before[k]
		if !ok {
			patch[k] = av
			continue
		}
		am, aIsObj := av.(map[string]any)
		bm, bIsObj := bv.(map[string]any)
		if aIsObj && bIsObj {
			if sub := diffObjects(bm, am); len(sub) > 0 {
				patch[k] = sub
			}
			continue
		}
		if !reflect.DeepEqual(av, bv) {
			patch[k] = av
		}
	}
	for k := range before {
		if _, ok := after[k]; !ok {
			patch[k] = nil
		}
	}
	return patch
}

// MergePatch applies patch to target in place and returns it. target may be nil.
func MergePatch(target, patch map[string]any) map[string]any {
	if target == nil {
		target = map[string]any{}
	}
	for k, pv := range patch {
		if pv == nil {
			delete(target, k)
			continue
		}
		if pm, ok := pv.(map[string]any); ok {
			tm, _ := target[k].(map[string]any)
			target[k] = MergePatch(tm, pm)
			continue
		}
		target[k] = pv
	}
	return target
}

// ApplyPatch returns a copy of record with the merge-patch applied.
func ApplyPatch[T any](record T, patch map[string]any) (T, error) {
	var out T
	obj, err := toObject(record)
	if err != nil {
		return out, err
	}
	raw, err := json.Marshal(MergePatch(obj, patch))
	if err != nil {
		return out, fmt.Errorf("encode patched record: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode patched record: %w", err)
	}
	return out, nil
}

func toObject(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	obj := map[string]any{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return obj, nil
}
