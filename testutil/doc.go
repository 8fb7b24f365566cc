// Package testutil provides helpers for testing routes and hosts: a
// collecting sink, a scriptable HTTP transport, polling and component
// start-up with automatic cleanup.
//
//	out := testutil.NewCollectSink()
//	transport := testutil.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
//	    return testutil.JSONResponse(r, http.StatusOK, `{"name":"Leanne Graham"}`), nil
//	})
//	testutil.WaitFor(t, time.Second, func() bool { return out.Len() == 1 })
package testutil
