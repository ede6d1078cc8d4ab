package drilldown

// Controller runs the navigation state machine directly. The rendered page
// replays the precomputed plan instead, but both paths go through EffectsFor,
// so a controller-driven consumer and the page can never disagree about what
// a click does.
type Controller struct {
	planner *Planner
	state   State
}

// NewController starts a controller at the root view.
func NewController(planner *Planner) *Controller {
	return &Controller{planner: planner}
}

// State returns the current navigation position.
func (c *Controller) State() State {
	return c.state
}

// Handle applies one event and returns the state it lands in plus the effects
// that realize it. An event naming a region or province the planner does not
// know leaves the state unchanged and yields no effects. Province clicks
// resolve the province's own region, so a caller-supplied region is never
// trusted.
func (c *Controller) Handle(e Event) (State, []Effect) {
	switch e.Kind {
	case ClickRegion:
		if _, ok := c.planner.regionBounds[e.Region]; !ok {
			return c.state, nil
		}
	case ClickProvince:
		region, ok := c.planner.provRegion[e.Province]
		if !ok {
			return c.state, nil
		}
		e.Region = region
	}

	next := Next(e)
	fx := c.planner.EffectsFor(next)
	c.state = next
	return next, fx
}
