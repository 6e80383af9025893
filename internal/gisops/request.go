package gisops

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"gisops/internal/geom"
)

// Operation names accepted in Request.Op.
const (
	OpDistance = "distance"
	OpArea     = "area"
	OpContains = "contains"
	OpBuffer   = "buffer"
)

// Ops lists the supported operations in a stable order.
var Ops = []string{OpDistance, OpArea, OpContains, OpBuffer}

// PointInput is a coordinate as it arrives from a caller. Pointers tell a
// missing coordinate apart from zero.
type PointInput struct {
	X *float64 `json:"x" validate:"required,finite"`
	Y *float64 `json:"y" validate:"required,finite"`
}

func (p PointInput) point() geom.Point {
	return geom.Point{X: *p.X, Y: *p.Y}
}

// PointOutput is a coordinate as returned to a caller.
type PointOutput struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Request is the envelope for one operation. Which fields are required
// depends on Op:
//
//	distance  a, b
//	area      points (ring)
//	contains  point, points (ring)
//	buffer    points (path), distance
type Request struct {
	Op       string        `json:"op"`
	A        *PointInput   `json:"a,omitempty"`
	B        *PointInput   `json:"b,omitempty"`
	Point    *PointInput   `json:"point,omitempty"`
	Points   []*PointInput `json:"points,omitempty"`
	Distance *float64      `json:"distance,omitempty"`
}

// Response carries either a value or an error. Value is a float64 for
// distance and area, a bool for contains and a []PointOutput for buffer.
type Response struct {
	Op    string `json:"op"`
	Value any    `json:"value,omitempty"`
	Error *Error `json:"error,omitempty"`
}

type pointArgs struct {
	Point *PointInput `json:"point" validate:"required"`
}

type distanceArgs struct {
	A *PointInput `json:"a" validate:"required"`
	B *PointInput `json:"b" validate:"required"`
}

type areaArgs struct {
	Points []*PointInput `json:"points" validate:"required,dive,required"`
}

type containsArgs struct {
	Point  *PointInput   `json:"point" validate:"required"`
	Points []*PointInput `json:"points" validate:"required,dive,required"`
}

type bufferArgs struct {
	Points   []*PointInput `json:"points" validate:"required,dive,required"`
	Distance *float64      `json:"distance" validate:"required,finite"`
}

// validators holds the custom tags used by the argument structs.
var validators = map[string]validator.Func{
	"finite": finite,
}

var validate = sync.OnceValues(newValidator)

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return v, nil
}

func finite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x := f.Float()
		return !math.IsNaN(x) && !math.IsInf(x, 0)
	}
	return false
}

// Validate checks that every field Op needs is present and finite. It runs
// before any geometry is touched.
func (r Request) Validate() *Error {
	var args any
	switch r.Op {
	case OpDistance:
		args = distanceArgs{A: r.A, B: r.B}
	case OpArea:
		args = areaArgs{Points: r.Points}
	case OpContains:
		args = containsArgs{Point: r.Point, Points: r.Points}
	case OpBuffer:
		args = bufferArgs{Points: r.Points, Distance: r.Distance}
	case "":
		return &Error{Kind: KindInvalid, Field: "op", Msg: "is required"}
	default:
		return &Error{Kind: KindUnknownOp, Op: r.Op, Field: "op", Msg: fmt.Sprintf("unknown operation %q", r.Op)}
	}
	return check(r.Op, args)
}

// check runs the struct tags on args and converts the first failure.
func check(op string, args any) *Error {
	v, err := validate()
	if err != nil {
		return &Error{Kind: KindInvalid, Op: op, Msg: "validator unavailable", Cause: err}
	}
	err = v.Struct(args)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Kind: KindInvalid, Op: op, Msg: err.Error(), Cause: err}
	}
	fe := verrs[0]
	e := &Error{Kind: KindInvalid, Op: op, Field: fieldPath(fe.Namespace()), Msg: "is required", Cause: err}
	if fe.Tag() == "finite" {
		e.Kind = KindNonFinite
		e.Msg = "must be a finite number"
	}
	return e
}

// fieldPath drops the leading struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// ParseRequest decodes a JSON envelope. It does not validate the fields;
// Service.Handle does that.
func ParseRequest(b []byte) (Request, *Error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return r, decodeError(r.Op, "", err)
	}
	return r, nil
}

// NewDistanceRequest builds a distance request from two JSON points.
func NewDistanceRequest(a, b []byte) (Request, *Error) {
	r := Request{Op: OpDistance}
	if err := decodeArg(r.Op, "a", a, &r.A); err != nil {
		return r, err
	}
	err := decodeArg(r.Op, "b", b, &r.B)
	return r, err
}

// NewAreaRequest builds an area request from a JSON ring.
func NewAreaRequest(ring []byte) (Request, *Error) {
	r := Request{Op: OpArea}
	err := decodeArg(r.Op, "points", ring, &r.Points)
	return r, err
}

// NewContainsRequest builds a contains request from a JSON point and ring.
func NewContainsRequest(point, ring []byte) (Request, *Error) {
	r := Request{Op: OpContains}
	if err := decodeArg(r.Op, "point", point, &r.Point); err != nil {
		return r, err
	}
	err := decodeArg(r.Op, "points", ring, &r.Points)
	return r, err
}

// NewBufferRequest builds a buffer request from a JSON path.
func NewBufferRequest(points []byte, distance float64) (Request, *Error) {
	r := Request{Op: OpBuffer, Distance: &distance}
	err := decodeArg(r.Op, "points", points, &r.Points)
	return r, err
}

// DecodePoint decodes and validates one {"x": .., "y": ..} value.
func DecodePoint(b []byte) (geom.Point, error) {
	var a pointArgs
	if err := decodeArg("", "point", b, &a.Point); err != nil {
		return geom.Point{}, err
	}
	if err := check("", a); err != nil {
		return geom.Point{}, err
	}
	return a.Point.point(), nil
}

// DecodeRing decodes and validates an array of points.
func DecodeRing(b []byte) (geom.LineString, error) {
	var a areaArgs
	if err := decodeArg("", "points", b, &a.Points); err != nil {
		return nil, err
	}
	if err := check("", a); err != nil {
		return nil, err
	}
	return toPath(a.Points), nil
}

// EncodePoints renders a path as an array of {"x": .., "y": ..} values.
func EncodePoints(ls geom.LineString) ([]byte, error) {
	return json.Marshal(toOutput(ls))
}

func decodeArg(op, field string, b []byte, v any) *Error {
	if err := json.Unmarshal(b, v); err != nil {
		return decodeError(op, field, err)
	}
	return nil
}

func decodeError(op, field string, err error) *Error {
	e := &Error{Kind: KindDecode, Op: op, Field: field, Msg: err.Error(), Cause: err}
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		if ute.Field != "" {
			e.Field = strings.TrimPrefix(field+"."+ute.Field, ".")
		}
		e.Msg = fmt.Sprintf("expected %s, got %s", ute.Type, ute.Value)
	}
	return e
}

func toPath(in []*PointInput) geom.LineString {
	ls := make(geom.LineString, len(in))
	for i, p := range in {
		ls[i] = p.point()
	}
	return ls
}

func toOutput(ls geom.LineString) []PointOutput {
	out := make([]PointOutput, len(ls))
	for i, p := range ls {
		out[i] = PointOutput{X: p.X, Y: p.Y}
	}
	return out
}
