package catalog_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/okian/retina/internal/domain/catalog"
	"github.com/smartystreets/goconvey/convey"
)

func raw(v string) json.RawMessage { return json.RawMessage(v) }

func TestRoutes(t *testing.T) {
	convey.Convey("Given the route catalog", t, func() {
		routes := catalog.Routes()

		convey.Convey("Then it should list seven routes with unique paths", func() {
			convey.So(routes, convey.ShouldHaveLength, 7)
			seen := map[string]bool{}
			for _, r := range routes {
				convey.So(seen[r.Path], convey.ShouldBeFalse)
				seen[r.Path] = true
				convey.So(strings.HasPrefix(r.Path, "/"), convey.ShouldBeTrue)
				convey.So(r.Model, convey.ShouldContainSubstring, "/")
				convey.So(r.Name, convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("Then mutating the returned slice should not affect the catalog", func() {
			routes[0].Path = "/changed"
			again := catalog.Routes()
			convey.So(again[0].Path, convey.ShouldEqual, "/image-gen-with-flux-1.1")
		})

		convey.Convey("Then every route should be found by its path", func() {
			for _, r := range routes {
				got, ok := catalog.Lookup(r.Path)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(got.Model, convey.ShouldEqual, r.Model)
			}
			_, ok := catalog.Lookup("/unknown")
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}

func TestBuild(t *testing.T) {
	convey.Convey("Given the flux 1.1 route", t, func() {
		r, ok := catalog.Lookup("/image-gen-with-flux-1.1")
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(r.Model, convey.ShouldEqual, "black-forest-labs/flux-1.1-pro")

		convey.Convey("When all caller fields are present", func() {
			in := r.Build(catalog.Request{TextToImageRequest: catalog.TextToImageRequest{
				Prompt:       raw(`"a cat"`),
				AspectRatio:  raw(`"1:1"`),
				OutputFormat: raw(`"png"`),
				NumOutputs:   raw(`4`),
			}})

			convey.Convey("Then they are forwarded verbatim with the fixed parameters", func() {
				convey.So(in, convey.ShouldHaveLength, 6)
				convey.So(in["prompt"], convey.ShouldResemble, raw(`"a cat"`))
				convey.So(in["aspect_ratio"], convey.ShouldResemble, raw(`"1:1"`))
				convey.So(in["output_format"], convey.ShouldResemble, raw(`"png"`))
				convey.So(in["output_quality"], convey.ShouldEqual, 80)
				convey.So(in["safety_tolerance"], convey.ShouldEqual, 4)
				convey.So(in["prompt_upsampling"], convey.ShouldEqual, false)
			})

			convey.Convey("Then fields the route does not read are dropped", func() {
				_, has := in["num_outputs"]
				convey.So(has, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the request is empty", func() {
			in := r.Build(catalog.Request{})

			convey.Convey("Then only the fixed parameters are sent", func() {
				convey.So(in, convey.ShouldResemble, catalog.Input{
					"output_quality":    80,
					"safety_tolerance":  4,
					"prompt_upsampling": false,
				})
			})
		})

		convey.Convey("When a caller field is JSON null", func() {
			in := r.Build(catalog.Request{TextToImageRequest: catalog.TextToImageRequest{Prompt: raw(`null`)}})

			convey.Convey("Then the null is forwarded as a value", func() {
				convey.So(in["prompt"], convey.ShouldResemble, raw(`null`))
			})
		})
	})

	convey.Convey("Given the flux dev realism route", t, func() {
		r, _ := catalog.Lookup("/image-gen-with-flux-dev-realism")

		convey.Convey("Then it reads num_outputs and adds its fixed parameters", func() {
			in := r.Build(catalog.Request{TextToImageRequest: catalog.TextToImageRequest{
				Prompt:     raw(`"street"`),
				NumOutputs: raw(`2`),
			}})
			convey.So(in["num_outputs"], convey.ShouldResemble, raw(`2`))
			convey.So(in["guidance"], convey.ShouldEqual, 3.5)
			convey.So(in["lora_strength"], convey.ShouldEqual, 0.8)
			convey.So(in["output_quality"], convey.ShouldEqual, 100)
			convey.So(in["num_inference_steps"], convey.ShouldEqual, 30)
			_, has := in["aspect_ratio"]
			convey.So(has, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given the image routes", t, func() {
		remover, _ := catalog.Lookup("/background-remover")
		upscaler, _ := catalog.Lookup("/image-upscaler")
		req := catalog.Request{
			ImageRequest:       catalog.ImageRequest{Image: raw(`"https://x/y.png"`)},
			TextToImageRequest: catalog.TextToImageRequest{Prompt: raw(`"ignored"`)},
		}

		convey.Convey("Then the background remover sends only the image", func() {
			convey.So(remover.Build(req), convey.ShouldResemble, catalog.Input{"image": raw(`"https://x/y.png"`)})
			convey.So(remover.Fields(), convey.ShouldResemble, []string{"image"})
		})

		convey.Convey("Then the upscaler adds scale and face enhancement", func() {
			in := upscaler.Build(req)
			convey.So(in, convey.ShouldHaveLength, 3)
			convey.So(in["scale"], convey.ShouldEqual, 4)
			convey.So(in["face_enhance"], convey.ShouldEqual, true)
		})

		convey.Convey("Then an absent image yields an input without it", func() {
			in := upscaler.Build(catalog.Request{})
			_, has := in["image"]
			convey.So(has, convey.ShouldBeFalse)
		})
	})

	convey.Convey("Given the LoRA style routes", t, func() {
		paths := map[string]string{
			"/image-gen-with-flux-lora-GHIBSKY-style": catalog.ModelGhibsky,
			"/image-gen-with-flux-lora-CNSTLL-style":  catalog.ModelCinestill,
			"/image-gen-with-flux-lora-TOK-style":     catalog.ModelHalfIllustration,
		}

		convey.Convey("Then each shares the same fixed parameters", func() {
			for path, model := range paths {
				r, ok := catalog.Lookup(path)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(r.Model, convey.ShouldEqual, model)

				in := r.Build(catalog.Request{TextToImageRequest: catalog.TextToImageRequest{Prompt: raw(`"TOK a fox"`)}})
				convey.So(in["model"], convey.ShouldEqual, "dev")
				convey.So(in["lora_scale"], convey.ShouldEqual, 1)
				convey.So(in["guidance_scale"], convey.ShouldEqual, 3.5)
				convey.So(in["output_quality"], convey.ShouldEqual, 100)
				convey.So(in["prompt_strength"], convey.ShouldEqual, 0.8)
				convey.So(in["extra_lora_scale"], convey.ShouldEqual, 1)
				convey.So(in["num_inference_steps"], convey.ShouldEqual, 28)
				convey.So(in["prompt"], convey.ShouldResemble, raw(`"TOK a fox"`))
				convey.So(in, convey.ShouldHaveLength, 8)
			}
		})
	})

	convey.Convey("Given two builds from the same route", t, func() {
		r, _ := catalog.Lookup("/image-upscaler")
		first := r.Build(catalog.Request{ImageRequest: catalog.ImageRequest{Image: raw(`"a"`)}})
		second := r.Build(catalog.Request{ImageRequest: catalog.ImageRequest{Image: raw(`"b"`)}})

		convey.Convey("Then the inputs should be independent", func() {
			first["scale"] = 2
			convey.So(second["scale"], convey.ShouldEqual, 4)
			convey.So(second["image"], convey.ShouldResemble, raw(`"b"`))
		})
	})
}
