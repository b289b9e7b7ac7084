package pbxapi

// knownResources lists the controller names exposed by stock Issabel
// installations, as shipped by the pbxapi module.
var knownResources = []string{
	"announcements",
	"blacklist",
	"bosssecretary",
	"callback",
	"callflow",
	"cidlookup",
	"classofservice",
	"classofserviceadmin",
	"conferences",
	"customdestinations",
	"customextensions",
	"dahdichanneldids",
	"dialplaninjection",
	"disa",
	"dynamicroutes",
	"extensions",
	"featurecodes",
	"inboundroutes",
	"ivr",
	"languages",
	"mailboxes",
	"manager",
	"miscapplications",
	"miscdestinations",
	"modules",
	"musiconhold",
	"outboundroutes",
	"paging",
	"parkinglots",
	"pinsets",
	"queuepriorities",
	"queues",
	"recordingrules",
	"recordings",
	"ringgroups",
	"routecongestionmessages",
	"setcallerid",
	"systemrecordings",
	"timeconditions",
	"timegroups",
	"trunks",
	"vmblast",
	"writequeuelog",
}

// KnownResources returns the resource names exposed by stock Issabel
// installations. The list is informational: the client forwards any resource
// name as-is, custom modules add their own controllers, and the server stays
// the sole arbiter of validity.
func KnownResources() []string {
	resources := make([]string, len(knownResources))
	copy(resources, knownResources)

	return resources
}
