// Package networking is a composable HTTP call pipeline.
//
// A Client resolves a Request against its base URL, encodes the optional
// input with its BodyEncoder and runs the resulting WireRequest through an
// ordered chain of PrerequestTransformers before handing it to a
// TransportClient. The RawResponse is then checked by the ResponseProcessor
// chain, whose last step always enforces the allowed status range, and the
// body is decoded into the caller's output value.
//
// Basic usage:
//
//	client, err := networking.NewClient(
//	    networking.WithBaseURL("https://api.example.com/v1"),
//	    networking.WithAuthTokenProvider(tokens),
//	    networking.WithHeaders(map[string]string{"Accept": "application/json"}),
//	)
//	if err != nil {
//	    return err
//	}
//	var user User
//	err = client.Get(ctx, networking.NewRequest("users/42"), nil, &user)
//
// Every failed call returns exactly one error of the taxonomy in errors.go,
// so callers can branch with errors.Is on the sentinels:
//
//	switch {
//	case errors.Is(err, networking.ErrUnexpectedStatusCode):
//	case errors.Is(err, networking.ErrTransport):
//	}
//
// A Client is immutable and safe for concurrent use by multiple goroutines.
package networking
