// Package project reads and writes meteomap project files.
//
// # Overview
//
// A project file is the portable form of a [document.Document]: the placed
// elements, the background reference and the user's custom icons. The same
// JSON record is used for project export/import and for the autosave slot in
// storage.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "timestamp": 1760000000000,
//	  "bgId": "france",
//	  "bgUrl": "https://example.org/france.png",
//	  "aspectRatio": "16:9",
//	  "elements": [
//	    {"id": "a1", "type": "icon", "x": 12.5, "y": 40, "iconRef": "sun", "size": 48},
//	    {"id": "b2", "type": "pressureZone", "x": 50, "y": 50,
//	     "zoneType": "anticyclone", "radius": 8, "hemisphere": "north"}
//	  ],
//	  "customIcons": [{"id": "hail", "glyph": "H", "label": "Grêle"}]
//	}
//
// timestamp is milliseconds since the Unix epoch. bgUrl is null when the
// background has no image.
//
// # Element Fields
//
// Common: id, type, x, y, locked. Per type:
//   - icon: iconRef, size
//   - label: text, fontSize, color, showBackground, showBorder
//   - temperature: value plus the label style fields
//   - wind: speedKmh plus the label style fields
//   - pressureZone: zoneType, radius, hemisphere
//
// # Validation
//
// [Unmarshal] rejects a record that has no version tag, a version newer than
// [SchemaVersion], an elements value that is not an array, an element of
// unknown type, and missing or duplicate element ids. Everything else is
// lenient: unknown fields are ignored, missing optional fields take their
// defaults and out-of-range values are clamped. Rejections are
// errors.ErrCodeInvalidProject or errors.ErrCodeUnsupportedVersion and never
// touch the caller's current document.
//
// # Round Trip
//
// For any valid document d, Unmarshal(Marshal(d)) reproduces d element for
// element and field for field, ids included. Selection and clipboard are not
// part of the record; callers start both empty after an import.
package project
