package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lootaura/lootaura/internal/core/domain"
	"github.com/lootaura/lootaura/internal/core/usecases"
	"github.com/lootaura/lootaura/internal/pkg/geospatial"
)

// sessionID extracts the browsing session identity from the X-Session-ID
// header or, failing that, the session query parameter.
func sessionID(c *fiber.Ctx) string {
	if id := c.Get("X-Session-ID"); id != "" {
		return id
	}
	return c.Query("session")
}

func parseBounds(c *fiber.Ctx) (domain.Bounds, error) {
	fields := [4]string{"west", "south", "east", "north"}
	var vals [4]float64
	for i, f := range fields {
		raw := c.Query(f)
		if raw == "" {
			return domain.Bounds{}, errors.New(f + " query parameter is required")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Bounds{}, errors.New(f + " must be a number")
		}
		vals[i] = v
	}
	return domain.Bounds{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}, nil
}

func parseFilters(c *fiber.Ctx) domain.SaleFilters {
	return domain.SaleFilters{
		Categories: domain.ParseCategories(c.Query("categories")),
		DatePreset: c.Query("date"),
		Zip:        c.Query("zip"),
	}.Normalize()
}

// searchHandler runs one lane's search turn: bump, fetch, gate, respond.
// A dropped batch is a normal 200 response carrying the outcome — drops
// are the expected result of racing requests, not errors.
func searchHandler(deps *Dependencies, lane domain.Lane, defaultCause domain.Cause) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			return errBadRequest(c, "X-Session-ID header or session query parameter is required")
		}

		bounds, err := parseBounds(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		cause := domain.Cause(c.Query("cause", string(defaultCause)))
		sess := deps.Sessions.Get(sid)

		// A seq snapshot lets one interaction stamp both lane fetches with
		// a single bump (the value returned by the viewport update or by
		// the sibling lane's dispatch).
		var res usecases.ApplyResult
		if rawSeq := c.Query("seq"); rawSeq != "" {
			seq, perr := strconv.ParseUint(rawSeq, 10, 64)
			if perr != nil {
				return errBadRequest(c, "seq must be a non-negative integer")
			}
			res, err = deps.Search.SearchAt(c.UserContext(), sess, lane, bounds, parseFilters(c), cause, seq)
		} else {
			res, err = deps.Search.Search(c.UserContext(), sess, lane, bounds, parseFilters(c), cause)
		}
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				return errBadRequest(c, verr.Error())
			}
			return errInternal(c, err.Error())
		}
		return c.JSON(res)
	}
}

// SearchSalesHandler serves the filtered-list lane.
func SearchSalesHandler(deps *Dependencies) fiber.Handler {
	return searchHandler(deps, domain.LaneList, domain.CauseFilters)
}

// MarkersHandler serves the map-markers lane.
func MarkersHandler(deps *Dependencies) fiber.Handler {
	return searchHandler(deps, domain.LaneMap, domain.CauseMap)
}

type viewportRequest struct {
	Viewport domain.Viewport    `json:"viewport"`
	Filters  domain.SaleFilters `json:"filters"`
}

// PutViewportHandler sets the session viewport. Only this path may mutate
// an initialized viewport; background location inference never does.
func PutViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			return errBadRequest(c, "X-Session-ID header or session query parameter is required")
		}

		var req viewportRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed body: "+err.Error())
		}

		sess := deps.Sessions.Get(sid)
		if err := sess.Viewport.Set(c.UserContext(), req.Viewport, req.Filters); err != nil {
			return errBadRequest(c, err.Error())
		}

		// A viewport change supersedes whatever fetches are in flight.
		seq := sess.Controller.Bump()
		return c.JSON(fiber.Map{"viewport": req.Viewport, "seq": seq})
	}
}

// GetViewportHandler returns the current viewport, hydrating from session
// storage when memory is empty.
func GetViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			return errBadRequest(c, "X-Session-ID header or session query parameter is required")
		}

		sess := deps.Sessions.Get(sid)
		v, ok := sess.Viewport.Get(c.UserContext())
		if !ok {
			return errNotFound(c, "no viewport for session")
		}
		return c.JSON(fiber.Map{"viewport": v, "filters": sess.Viewport.Filters()})
	}
}

// DeleteViewportHandler resets the session viewport.
func DeleteViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			return errBadRequest(c, "X-Session-ID header or session query parameter is required")
		}

		sess := deps.Sessions.Get(sid)
		sess.Viewport.Clear(c.UserContext())
		deps.Resolver.Forget(sid)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type intentRequest struct {
	Kind string `json:"kind"`
	Sub  string `json:"sub"`
}

// SetIntentHandler records the active user intent for a session.
func SetIntentHandler(deps *Dependencies) fiber.Handler {
	valid := map[domain.IntentKind]bool{
		domain.IntentIdle:             true,
		domain.IntentFilters:          true,
		domain.IntentMapPan:           true,
		domain.IntentClusterDrilldown: true,
	}
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			return errBadRequest(c, "X-Session-ID header or session query parameter is required")
		}

		var req intentRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "malformed body: "+err.Error())
		}
		kind := domain.IntentKind(strings.ToLower(strings.TrimSpace(req.Kind)))
		if !valid[kind] {
			return errBadRequest(c, "unknown intent kind: "+req.Kind)
		}

		sess := deps.Sessions.Get(sid)
		sess.Controller.SetIntent(domain.Intent{Kind: kind, Sub: req.Sub})
		return c.JSON(fiber.Map{"intent": sess.Controller.Intent()})
	}
}

// ResolveLocationHandler runs the initial-location priority chain and
// returns a starting viewport. When the session already has a viewport
// (user panned, or a previous resolution ran), that wins and the chain is
// skipped; ?force=1 re-runs the chain regardless.
func ResolveLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := sessionID(c)
		if sid == "" {
			return errBadRequest(c, "X-Session-ID header or session query parameter is required")
		}
		force := c.QueryBool("force", false)

		sess := deps.Sessions.Get(sid)
		if !force {
			if v, ok := sess.Viewport.Get(c.UserContext()); ok {
				return c.JSON(fiber.Map{"viewport": v, "source": "session"})
			}
		}

		req := usecases.ResolveRequest{
			LatParam:   c.Query("lat"),
			LngParam:   c.Query("lng"),
			ZoomParam:  c.Query("zoom"),
			ZipParam:   c.Query("zip"),
			ServerHint: serverHint(c),
			ClientIP:   c.IP(),
			SessionID:  sid,
		}

		loc := deps.Resolver.Resolve(c.UserContext(), req, force)
		return c.JSON(fiber.Map{
			"viewport": geospatial.ViewportFor(loc),
			"source":   loc.Source,
		})
	}
}

// serverHint reads the center the edge already derived (cookie set from a
// stored home ZIP or IP geolocation). Opaque priority-3 slot: malformed
// cookies are simply absent.
func serverHint(c *fiber.Ctx) *domain.LatLng {
	raw := c.Cookies("lootaura_ll")
	if raw == "" {
		return nil
	}
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return nil
	}
	lat, err1 := strconv.ParseFloat(parts[0], 64)
	lng, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	point := domain.LatLng{Lat: lat, Lng: lng}
	if !point.Valid() {
		return nil
	}
	return &point
}

// GeocodeZipHandler resolves a ZIP code to a coordinate.
func GeocodeZipHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		zip := c.Params("zip")
		if len(zip) != 5 {
			return errBadRequest(c, "zip must be 5 digits")
		}

		point, err := deps.Geocoder.GeocodeZip(c.UserContext(), zip)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if point == nil {
			return errNotFound(c, "unknown zip: "+zip)
		}

		c.Set("Cache-Control", "public, max-age=86400")
		return c.JSON(point)
	}
}
