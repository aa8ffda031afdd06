package vision

import (
	"github.com/floorplan-layout/analyzer/internal/floorplan"
	"github.com/floorplan-layout/analyzer/internal/geometry"
)

// Prompts is the fixed system/user prompt pair sent with the image.
type Prompts struct {
	System string
	User   string
}

// PromptsFor returns the prompt pair asking for the given shape. Auto uses
// the nested prompt.
func PromptsFor(shape floorplan.Shape) Prompts {
	if shape == floorplan.ShapeFlat {
		return flatPrompts
	}
	return nestedPrompts
}

var nestedPrompts = Prompts{
	System: `You are an AI specialized in analyzing data center floor plans.
Your task is to examine the provided image and generate a structured JSON representation
of the data center layout, including rooms, rows, and racks.
It's crucial to identify and include all cooling units (AC or AHU) as racks with type 'REF'.
Associate each cooling unit with the nearest row and include them in the 'racks' list of that row.
Do not create a separate section for cooling units.
Each element should have an 'id' which is an auto-incrementing number, and a 'name' that
corresponds to the identifier visible in the image.`,
	User: `Analyze this data center floor plan and provide a structured JSON
representation of the layout. Include rooms, rows, and racks.
Use 'type' field with values 'IT' for IT racks and 'REF' for cooling units.
Make sure to identify all AC or AHU units and include them as racks of type 'REF'
in the 'racks' list of the appropriate rows. Do not create a separate section for cooling units.
Respond only with the JSON structure, do not include any explanatory text.
Each element should have an 'id' which is an auto-incrementing number, and a 'name' that
corresponds to the identifier visible in the image.`,
}

var flatPrompts = Prompts{
	System: `You are an AI specialized in analyzing data center floor plans. Your task is to examine the provided image
and generate a structured JSON representation of the data center layout. Follow these guidelines strictly:

1. The JSON should be a flat array of objects, each representing either a row or a rack.
2. Identify all rows in the layout, regardless of their orientation (vertical or horizontal).
3. For rack dimensions, use exactly:
   - For vertical rows, racks: width = 90 pixels, height = 60 pixels
   - For horizontal rows, racks: width = 60 pixels, height = 90 pixels
4. Each row object must have this structure:
   {
     "id": "r{row_number}",
     "label": "Row {row_number}",
     "position": {"x": {calculated_x}, "y": {calculated_y}},
     "height": {calculated_height},
     "width": {calculated_width},
     "connectable": false,
     "selectable": false,
     "class": "row"
   }
5. Each rack object must have this structure:
   {
     "id": "r{row_number}-{rack_number}",
     "label": "{rack_name_from_image}",
     "position": {"x": {calculated_x}, "y": {calculated_y}},
     "width": {rack_width},
     "height": {rack_height},
     "parentNode": "r{row_number}",
     "connectable": false,
     "selectable": false,
     "class": "rack",
     "type": "{IT_or_REF}"
   }
6. Calculate row dimensions:
   - Height/width must cover all racks plus 20 pixels padding (10 on each side)
7. Position rows to avoid overlapping:
   - Ensure 50 pixels spacing between rows
8. Position each rack relative to its parent row:
   - Coordinates must be relative to the top-left corner of the parent row
   - For vertical rows:
     * x = 10 for all racks
     * y starts at 20 for the first rack, increase by (rack height + 1) for each subsequent rack
   - For horizontal rows:
     * x starts at 20 for the first rack, increase by (rack width + 1) for each subsequent rack
     * y = 10 for all racks
9. Mark cooling units (AC, AHU) as type "REF". All others are type "IT".
10. Use visible identifiers in the image for rack labels.
11. All measurements must be in pixels and integers.
12. Ensure all racks are within their row boundaries.
` + flatExample() + `
Analyze the image carefully and create the JSON structure based on these precise instructions.`,
	User: "Analyze this data center floor plan and provide the JSON structure as described in the instructions. Respond only with the JSON array, no additional text.",
}

// flatExample renders a vertical row holding one IT rack and one cooling unit
// with the same geometry the normalizer checks replies against.
func flatExample() string {
	row, racks := geometry.Layout(1, floorplan.Vertical, []geometry.RackSpec{
		{Label: "A01"},
		{Label: "AHU-1"},
	})
	doc := floorplan.FlatDocument([]floorplan.Row{row}, [][]floorplan.Rack{racks})
	pretty, err := floorplan.Pretty(doc)
	if err != nil {
		return ""
	}
	return "13. Example of one vertical row with an IT rack and a cooling unit:\n" + pretty + "\n"
}
