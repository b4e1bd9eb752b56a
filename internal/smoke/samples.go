package smoke

import "github.com/okian/retina/internal/domain/catalog"

// sampleImage is a small public test picture.
const sampleImage = "https://replicate.delivery/pbxt/KYU95NKY092KYhmCDbLLOVHZqzSC27D5kQLHDb28YM6u8Il1/input.jpg"

// Sample returns a request body that exercises route.
func Sample(route catalog.Route) map[string]any {
	if route.Kind == catalog.KindImageOnly {
		return map[string]any{"image": sampleImage}
	}
	body := map[string]any{
		"prompt":        "a lighthouse on a cliff at dusk",
		"aspect_ratio":  "1:1",
		"output_format": "webp",
	}
	if route.Name != "flux-1.1" {
		body["num_outputs"] = 1
	}
	return body
}
