// Package web owns the multi-tenant site server.
//
// Each request is attributed to a tenant by hostname and to a locale by
// query, cookie or Accept-Language. The site surface then fetches the page's
// module list from the config API, composes it through the module registry
// and renders it inside the tenant's layout. Favicons, health, metrics and
// the ops cache-purge endpoint are mounted as separate surfaces.
package web
