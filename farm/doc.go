/*Package farm holds the domain model of a farm installation.

A farm contains sites, a site contains gateways, and a gateway exposes a list
of sensor or controller devices. The types in this package mirror the wire
format of the farm inventory API, so a freshly fetched inventory can be used
directly as the live state tree.

The package also provides the canonical sensor type set and the normalizer
that maps the many raw device type labels found in the field onto it.
*/
package farm
