package httpapi

import (
	"encoding"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"bloodlink/pkg/api/bloodlinkv1"
)

var (
	timeType          = reflect.TypeOf(time.Time{})
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// openAPIDocument описывает процедуры Connect как POST с JSON телом.
// Схемы выводятся из json тегов сообщений.
func openAPIDocument(endpoints []endpoint, version string) ([]byte, error) {
	g := &schemaGen{schemas: map[string]any{}}
	g.schemas["ConnectError"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"code":    map[string]any{"type": "string", "example": "not_found"},
			"message": map[string]any{"type": "string"},
		},
	}

	paths := map[string]any{}
	for _, ep := range endpoints {
		paths[bloodlinkv1.FullMethod(ep.method)] = map[string]any{
			"post": map[string]any{
				"operationId": ep.method,
				"tags":        []string{bloodlinkv1.ServiceName},
				"requestBody": map[string]any{
					"required": true,
					"content":  jsonContent(g.schema(ep.req)),
				},
				"responses": map[string]any{
					"200": map[string]any{
						"description": "OK",
						"content":     jsonContent(g.schema(ep.resp)),
					},
					"default": map[string]any{
						"description": "Connect error",
						"content":     jsonContent(map[string]any{"$ref": "#/components/schemas/ConnectError"}),
					},
				},
			},
		}
	}

	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "BloodLink Matching API",
			"version": version,
		},
		"paths":      paths,
		"components": map[string]any{"schemas": g.schemas},
	}
	return json.MarshalIndent(doc, "", "  ")
}

func jsonContent(schema any) map[string]any {
	return map[string]any{"application/json": map[string]any{"schema": schema}}
}

type schemaGen struct {
	schemas map[string]any
}

func (g *schemaGen) schema(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return map[string]any{"type": "string", "format": "date-time"}
	case t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType):
		return map[string]any{"type": "string"}
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return map[string]any{"type": "integer", "format": "int32"}
	case reflect.Int64, reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer", "format": "int64"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return map[string]any{"type": "string", "format": "byte"}
		}
		return map[string]any{"type": "array", "items": g.schema(t.Elem())}
	case reflect.Map:
		return map[string]any{"type": "object", "additionalProperties": g.schema(t.Elem())}
	case reflect.Struct:
		return g.object(t)
	default:
		return map[string]any{}
	}
}

// object регистрирует структуру в components и возвращает ссылку
func (g *schemaGen) object(t reflect.Type) map[string]any {
	ref := map[string]any{"$ref": "#/components/schemas/" + t.Name()}
	if _, ok := g.schemas[t.Name()]; ok {
		return ref
	}

	properties := map[string]any{}
	obj := map[string]any{"type": "object", "properties": properties}
	// заглушка до обхода полей, чтобы рекурсивные типы не зациклились
	g.schemas[t.Name()] = obj

	var required []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, omitempty := jsonName(f)
		if name == "-" {
			continue
		}
		properties[name] = g.schema(f.Type)
		if !omitempty && f.Type.Kind() != reflect.Pointer {
			required = append(required, name)
		}
	}
	if len(required) > 0 {
		obj["required"] = required
	}
	return ref
}

func jsonName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "" {
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}
	return name, strings.Contains(opts, "omitempty")
}
