// Package catalog describes the hosted models the gateway fronts: the HTTP
// path each one is served on, its model reference, which request fields are
// taken from the caller, and the fixed parameters merged into every call.
package catalog

import "encoding/json"

// Input is the parameter object sent to a hosted model.
type Input map[string]any

// Kind names the request shape a route accepts.
type Kind string

const (
	// KindTextToImage reads prompt, aspect_ratio, output_format and num_outputs.
	KindTextToImage Kind = "text_to_image"
	// KindImageOnly reads image.
	KindImageOnly Kind = "image_only"
)

// TextToImageRequest carries the caller-controlled fields of text-to-image
// routes. Values are forwarded verbatim; a nil value means the caller did not
// send the field.
type TextToImageRequest struct {
	Prompt       json.RawMessage `json:"prompt"`
	AspectRatio  json.RawMessage `json:"aspect_ratio"`
	OutputFormat json.RawMessage `json:"output_format"`
	NumOutputs   json.RawMessage `json:"num_outputs"`
}

// ImageRequest carries the caller-controlled field of image-in routes.
type ImageRequest struct {
	Image json.RawMessage `json:"image"`
}

// Request is the union of every field a route may read.
type Request struct {
	TextToImageRequest
	ImageRequest
}

// Route binds one hosted model to one HTTP path.
type Route struct {
	// Name is a short metric/log friendly identifier.
	Name string
	// Path is the HTTP path, with a leading slash.
	Path string
	// Model is the model reference, owner/name or owner/name:version.
	Model string
	// Kind selects the fields read from the request.
	Kind Kind

	build func(Request) Input
}

// Build returns a fresh input for this route, combining the request fields
// the route reads with its fixed parameters.
func (r Route) Build(req Request) Input {
	return r.build(req)
}

// Fields lists the request fields the route reads.
func (r Route) Fields() []string {
	if r.Kind == KindImageOnly {
		return []string{"image"}
	}
	if r.Name == "flux-1.1" {
		return []string{"prompt", "aspect_ratio", "output_format"}
	}
	return []string{"prompt", "aspect_ratio", "output_format", "num_outputs"}
}

// Model references.
const (
	ModelFlux11Pro        = "black-forest-labs/flux-1.1-pro"
	ModelFluxDevRealism   = "xlabs-ai/flux-dev-realism:39b3434f194f87a900d1bc2b6d4b983e90f0dde1d5022c27b52c143d670758fa"
	ModelRemoveBackground = "lucataco/remove-bg:95fcc2a26d3899cd6c2691c900465aaeff466285a65c14638cc5f36f34befaf1"
	ModelRealESRGAN       = "daanelson/real-esrgan-a100:f94d7ed4a1f7e1ffed0d51e4089e4911609d5eeee5e874ef323d2c7562624bed"
	ModelGhibsky          = "aleksa-codes/flux-ghibsky-illustration:a9f94946fa0377091ac0bcfe61b0d62ad9a85224e4b421b677d4747914b908c0"
	ModelCinestill        = "adirik/flux-cinestill:216a43b9975de9768114644bbf8cd0cba54a923c6d0f65adceaccfc9383a938f"
	ModelHalfIllustration = "davisbrown/flux-half-illustration:687458266007b196a490e79a77bae4b123c1792900e1cb730a51344887ad9832"
)

var routes = []Route{
	{
		Name:  "flux-1.1",
		Path:  "/image-gen-with-flux-1.1",
		Model: ModelFlux11Pro,
		Kind:  KindTextToImage,
		build: func(req Request) Input {
			in := Input{}
			set(in, "prompt", req.Prompt)
			set(in, "aspect_ratio", req.AspectRatio)
			set(in, "output_format", req.OutputFormat)
			in["output_quality"] = 80
			in["safety_tolerance"] = 4
			in["prompt_upsampling"] = false
			return in
		},
	},
	{
		Name:  "flux-dev-realism",
		Path:  "/image-gen-with-flux-dev-realism",
		Model: ModelFluxDevRealism,
		Kind:  KindTextToImage,
		build: func(req Request) Input {
			in := Input{}
			set(in, "prompt", req.Prompt)
			in["guidance"] = 3.5
			set(in, "num_outputs", req.NumOutputs)
			set(in, "aspect_ratio", req.AspectRatio)
			in["lora_strength"] = 0.8
			set(in, "output_format", req.OutputFormat)
			in["output_quality"] = 100
			in["num_inference_steps"] = 30
			return in
		},
	},
	{
		Name:  "background-remover",
		Path:  "/background-remover",
		Model: ModelRemoveBackground,
		Kind:  KindImageOnly,
		build: func(req Request) Input {
			in := Input{}
			set(in, "image", req.Image)
			return in
		},
	},
	{
		Name:  "image-upscaler",
		Path:  "/image-upscaler",
		Model: ModelRealESRGAN,
		Kind:  KindImageOnly,
		build: func(req Request) Input {
			in := Input{}
			set(in, "image", req.Image)
			in["scale"] = 4
			in["face_enhance"] = true
			return in
		},
	},
	loraRoute("flux-lora-ghibsky", "/image-gen-with-flux-lora-GHIBSKY-style", ModelGhibsky),
	loraRoute("flux-lora-cnstll", "/image-gen-with-flux-lora-CNSTLL-style", ModelCinestill),
	loraRoute("flux-lora-tok", "/image-gen-with-flux-lora-TOK-style", ModelHalfIllustration),
}

// loraRoute builds one of the flux LoRA style routes, which share their
// parameters and differ only in the fine-tuned model.
func loraRoute(name, path, model string) Route {
	return Route{
		Name:  name,
		Path:  path,
		Model: model,
		Kind:  KindTextToImage,
		build: func(req Request) Input {
			in := Input{}
			in["model"] = "dev"
			set(in, "prompt", req.Prompt)
			in["lora_scale"] = 1
			set(in, "num_outputs", req.NumOutputs)
			set(in, "aspect_ratio", req.AspectRatio)
			set(in, "output_format", req.OutputFormat)
			in["guidance_scale"] = 3.5
			in["output_quality"] = 100
			in["prompt_strength"] = 0.8
			in["extra_lora_scale"] = 1
			in["num_inference_steps"] = 28
			return in
		},
	}
}

// set copies a caller field into in unless the caller omitted it.
func set(in Input, key string, v json.RawMessage) {
	if v == nil {
		return
	}
	in[key] = v
}

// Routes returns the catalog in registration order. The slice is a copy.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route served on path.
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
