package constants

// Обменник и ключи маршрутизации для событий сверки.
const (
	ListingEventsExchange   = "televito_exchange"
	RoutingKeyListingEvents = "listings.events"
)
