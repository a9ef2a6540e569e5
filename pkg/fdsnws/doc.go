// Package fdsnws is a client for the FDSNWS web services exposed by SeisComP
// servers.
//
// Queries are composed with a fluent builder. Each service enables the
// constraint groups it supports, and every setter returns the builder so
// constraints from different groups can be chained in one statement:
//
//	client := fdsnws.New("https://moho.iag.usp.br/fdsnws/")
//	stations, err := client.Station.Query().
//		Channel().Network("IU").
//		Channel().Station("ANMO").
//		Time().StartBefore("2019-01-01").
//		Finish(ctx)
//
// Setting the same parameter twice merges the values with a comma, which the
// server reads as OR. A 404 from the server means "no matching data" and is
// reported as an empty or nil result, never as an error.
package fdsnws
