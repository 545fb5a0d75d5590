package interp

import "github.com/rhelmot/objectively/object"

// getItem, setItem, and delItem implement the GET_ITEM/SET_ITEM/DEL_ITEM
// opcode group's container dispatch: list (int or slice index), dict (any
// hashable key), and bytes/bytes-view (int or slice index) -- the concrete
// Kinds that support subscripting.
func getItem(container, index object.Object) (object.Object, error) {
	switch c := container.(type) {
	case *object.List:
		if s, ok := index.(*object.Slice); ok {
			start, end, err := s.Bounds(len(c.Data))
			if err != nil {
				return nil, err
			}
			group := c.Hdr().Group
			return object.NewList(group, append([]object.Object(nil), c.Data[start:end]...))
		}
		i, ok := index.(*object.Int)
		if !ok {
			return nil, object.NewTypeErrorf("list indices must be int or slice, got %s", object.KindName(index))
		}
		return c.Get(i.Value)
	case *object.Dict:
		v, found, err := c.Get(index)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, object.NewKeyError(index)
		}
		return v, nil
	case *object.Bytes:
		return sliceBytes(c.Hdr().Group, c, c.Data, index)
	case *object.BytesView:
		return sliceBytes(c.Hdr().Group, c, c.Data, index)
	}
	return nil, object.NewTypeErrorf("object of kind %s is not subscriptable", object.KindName(container))
}

func sliceBytes(group *object.Group, owner object.Object, data []byte, index object.Object) (object.Object, error) {
	if s, ok := index.(*object.Slice); ok {
		start, end, err := s.Bounds(len(data))
		if err != nil {
			return nil, err
		}
		return object.NewBytesView(group, owner, data[start:end])
	}
	i, ok := index.(*object.Int)
	if !ok {
		return nil, object.NewTypeErrorf("bytes indices must be int or slice, got %s", object.KindName(index))
	}
	v := i.Value
	if v < 0 {
		v += int64(len(data))
	}
	if v < 0 || v >= int64(len(data)) {
		return nil, object.NewIndexErrorf("index %d out of range for length %d", i.Value, len(data))
	}
	n, err := object.NewIntEx(group, int64(data[v]))
	if err != nil {
		return nil, err
	}
	return n, nil
}

func setItem(container, index, value object.Object) error {
	switch c := container.(type) {
	case *object.List:
		i, ok := index.(*object.Int)
		if !ok {
			return object.NewTypeErrorf("list indices must be int, got %s", object.KindName(index))
		}
		return c.Set(i.Value, value)
	case *object.Dict:
		return c.Set(index, value)
	}
	return object.NewTypeErrorf("object of kind %s does not support item assignment", object.KindName(container))
}

func delItem(container, index object.Object) error {
	switch c := container.(type) {
	case *object.Dict:
		found, err := c.Del(index)
		if err != nil {
			return err
		}
		if !found {
			return object.NewKeyError(index)
		}
		return nil
	}
	return object.NewTypeErrorf("object of kind %s does not support item deletion", object.KindName(container))
}
