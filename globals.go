package main

const ProtocolReference = `# Drawing Command Reference

## Envelope
{"version": 1, "action": "draw" | "mutate", ...}
- version: always 1 (may be omitted)
- draw carries "shapes": [shape, ...] (at most 5000)
- mutate carries "operations": [operation, ...] (at most 2000)

## Shapes
Every shape has "type" and the numeric fields of its type. Numbers must be finite.

| type   | required fields              | optional fields (default)                               |
|--------|------------------------------|---------------------------------------------------------|
| line   | x1, y1, x2, y2               |                                                         |
| rect   | x, y, w, h (w, h > 0)        |                                                         |
| circle | cx, cy, r (r > 0)            |                                                         |
| arc    | cx, cy, r (r > 0)            | startAngle (0), endAngle (90), degrees                  |
| text   | x, y, text (non-empty)       | height (2.5, > 0), rotation (0), align (left|center|right) |
| point  | x, y                         |                                                         |
| dim    | x1, y1, x2, y2               | offset (5), dir (aligned|horizontal|vertical)           |

Unknown fields are dropped. Shapes are drawn in order; later shapes are on top.

## Operations
- {"type": "add", "shape": shape}
- {"type": "update", "id": "shape_...", "patch": {"field": value, ...}}
- {"type": "delete", "id": "shape_..."}

Operations run in order. Ids are assigned by the editor after your reply, so
update and delete may only use ids listed in the current document. Never
invent an id; operations naming an unknown id are skipped.

## Examples

### Draw a framed title
{"version": 1, "action": "draw", "shapes": [
  {"type": "rect", "x": 0, "y": 0, "w": 100, "h": 60},
  {"type": "text", "x": 50, "y": 55, "text": "PLAN", "align": "center", "height": 5}
]}

### Move a circle and remove a line
{"version": 1, "action": "mutate", "operations": [
  {"type": "update", "id": "shape_0192", "patch": {"cx": 40, "cy": 20}},
  {"type": "delete", "id": "shape_0193"}
]}
`
