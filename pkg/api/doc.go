// Package api defines the itinavi.v1 request and response messages exchanged
// over Connect. Messages travel as JSON; field names follow the protobuf JSON
// mapping (lowerCamelCase) and timestamps use timestamppb.
package api
