package routes

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/routekit/fetch"
	"github.com/kbukum/routekit/route"
	"github.com/kbukum/routekit/sink"
	"github.com/kbukum/routekit/source"
)

// HelloWorldID is the id of the hello-world route.
const HelloWorldID = "hello-world"

// UserRequest is the body emitted by the hello-world source.
type UserRequest struct {
	UserID int `json:"userId"`
}

// User is the subset of the user resource the route reads.
type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// HelloWorld emits one user request, fetches the user, decodes it and logs
// a greeting.
func HelloWorld(opts ...Option) (*route.Route, error) {
	o := resolveOptions(opts)
	base := strings.TrimRight(o.baseURL, "/")

	var fetchOpts []fetch.Option
	if o.client != nil {
		fetchOpts = append(fetchOpts, fetch.WithClient(o.client))
	}
	fetchOpts = append(fetchOpts, fetch.WithName("fetch-user"))

	to := o.sink
	if to == nil {
		to = sink.Log(o.log, sink.WithMessage("greeting"))
	}

	return route.Craft().
		ID(HelloWorldID).
		From(source.Simple(UserRequest{UserID: o.userID})).
		Enrich(fetch.New(fetch.Descriptor{
			URLFunc: fetch.URLOf(func(req UserRequest) string {
				return fmt.Sprintf("%s/users/%d", base, req.UserID)
			}),
			Headers: map[string]string{"Accept": "application/json"},
		}, fetchOpts...)).
		Transform(fetch.DecodeJSON[User]()).
		Transform(route.Named("greet", route.Transform(Greet))).
		To(to).
		Build()
}

// Greet renders the greeting for u.
func Greet(_ context.Context, u User) (string, error) {
	return "Hello, " + u.Name + "!", nil
}
