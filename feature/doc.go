// Package feature converts records to and from GeoJSON features.
//
// Every record is written as
//
//	{"type": "Feature", "id": 42, "geometry": {...},
//	 "properties": {"type": "Feature", "height": 7.5, "confidence": 0.9}}
//
// A missing height is written as null. Features read without an id get a
// content-derived ID so duplicates across overlapping tiles can still be
// detected.
package feature
