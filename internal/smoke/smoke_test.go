package smoke_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/retina/internal/adapters/http/api"
	service "github.com/okian/retina/internal/app"
	"github.com/okian/retina/internal/domain/catalog"
	"github.com/okian/retina/internal/smoke"
	"github.com/okian/retina/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// routeInvoker fails the routes named in fail and succeeds the rest.
type routeInvoker struct {
	fail map[string]bool
}

func (r routeInvoker) Invoke(_ context.Context, route catalog.Route, _ catalog.Input) service.Outcome {
	if r.fail[route.Name] {
		return service.Outcome{Err: errors.New("upstream rejected input")}
	}
	return service.Outcome{Output: []string{"https://replicate.delivery/out.webp"}}
}

func newGateway(inv api.Invoker) *httptest.Server {
	srv := api.NewServer(inv)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return httptest.NewServer(srv.Handler(mux))
}

func TestRun(t *testing.T) {
	Convey("Given a running gateway", t, func() {
		gw := newGateway(routeInvoker{fail: map[string]bool{"image-upscaler": true}})
		defer gw.Close()
		var out bytes.Buffer
		cfg := &smoke.Config{BaseURL: gw.URL + "/", Timeout: 5 * time.Second, Workers: 3}

		Convey("When only probing status", func() {
			report, err := smoke.Run(context.Background(), cfg, &out)

			Convey("Then the probe succeeds and no route is called", func() {
				So(err, ShouldBeNil)
				So(report.Status.OK(), ShouldBeTrue)
				So(report.Status.Message, ShouldEqual, "Retina.AI Server APIs")
				So(report.Routes, ShouldBeEmpty)
				So(out.String(), ShouldContainSubstring, "0 routes, 0 failed")
			})
		})

		Convey("When generating on every route", func() {
			cfg.Generate = true
			report, err := smoke.Run(context.Background(), cfg, &out)

			Convey("Then each route is reported in catalog order", func() {
				So(err, ShouldBeNil)
				So(report.Routes, ShouldHaveLength, len(catalog.Routes()))
				for i, r := range catalog.Routes() {
					So(report.Routes[i].Path, ShouldEqual, r.Path)
				}
				So(report.Failed(), ShouldEqual, 1)
				So(out.String(), ShouldContainSubstring, "7 routes, 1 failed")
			})

			Convey("Then the failing route carries the failure envelope", func() {
				for _, res := range report.Routes {
					if res.Name == "image-upscaler" {
						So(res.Status, ShouldEqual, http.StatusInternalServerError)
						So(res.Message, ShouldEqual, "An internal server error occurred")
					} else {
						So(res.Message, ShouldEqual, "Generation is successful")
					}
				}
			})
		})

		Convey("When generating on selected routes", func() {
			cfg.Generate = true
			cfg.Routes = []string{"background-remover", "flux-lora-tok"}
			report, err := smoke.Run(context.Background(), cfg, &out)

			Convey("Then only those routes are called", func() {
				So(err, ShouldBeNil)
				So(report.Routes, ShouldHaveLength, 2)
				So(report.Failed(), ShouldEqual, 0)
			})
		})

		Convey("When a selected route does not exist", func() {
			cfg.Generate = true
			cfg.Routes = []string{"nope"}
			_, err := smoke.Run(context.Background(), cfg, &out)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, smoke.ErrUnknownRoute), ShouldBeTrue)
			})
		})
	})

	Convey("Given no gateway", t, func() {
		gw := newGateway(routeInvoker{})
		url := gw.URL
		gw.Close()
		var out bytes.Buffer

		Convey("When probing", func() {
			_, err := smoke.Run(context.Background(), &smoke.Config{BaseURL: url, Timeout: time.Second, Workers: 1}, &out)

			Convey("Then the probe failure is returned", func() {
				So(errors.Is(err, smoke.ErrProbeFailed), ShouldBeTrue)
				So(out.String(), ShouldContainSubstring, "ERR")
			})
		})
	})
}

func TestSample(t *testing.T) {
	Convey("Given the catalog routes", t, func() {
		Convey("Then each sample carries exactly the fields its route reads", func() {
			for _, r := range catalog.Routes() {
				body := smoke.Sample(r)
				So(body, ShouldHaveLength, len(r.Fields()))
				for _, f := range r.Fields() {
					So(body, ShouldContainKey, f)
				}
			}
		})
	})
}
