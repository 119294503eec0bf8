package constants

// NSQ topics
const (
	TopicRideOffer    = "ride.offer"
	TopicRideStatus   = "ride.status"
	TopicRideLocation = "ride.location"
)

// NSQ channels
const (
	ChannelDispatch = "dispatch"
)
