package suggest

// Popular answers common queries without a network round trip.
var Popular = []Suggestion{
	{City: "New York", Country: "USA", Timezone: "America/New_York"},
	{City: "London", Country: "UK", Timezone: "Europe/London"},
	{City: "Tokyo", Country: "Japan", Timezone: "Asia/Tokyo"},
	{City: "Paris", Country: "France", Timezone: "Europe/Paris"},
	{City: "Mumbai", Country: "India", Timezone: "Asia/Kolkata"},
	{City: "Delhi", Country: "India", Timezone: "Asia/Kolkata"},
	{City: "Bengaluru", Country: "India", Timezone: "Asia/Kolkata"},
	{City: "Dubai", Country: "UAE", Timezone: "Asia/Dubai"},
	{City: "Singapore", Country: "Singapore", Timezone: "Asia/Singapore"},
	{City: "Sydney", Country: "Australia", Timezone: "Australia/Sydney"},
	{City: "Berlin", Country: "Germany", Timezone: "Europe/Berlin"},
	{City: "San Francisco", Country: "USA", Timezone: "America/Los_Angeles"},
	{City: "Los Angeles", Country: "USA", Timezone: "America/Los_Angeles"},
	{City: "Chicago", Country: "USA", Timezone: "America/Chicago"},
	{City: "Toronto", Country: "Canada", Timezone: "America/Toronto"},
	{City: "Hong Kong", Country: "China", Timezone: "Asia/Hong_Kong"},
	{City: "Seoul", Country: "South Korea", Timezone: "Asia/Seoul"},
	{City: "Bangkok", Country: "Thailand", Timezone: "Asia/Bangkok"},
	{City: "Istanbul", Country: "Turkey", Timezone: "Europe/Istanbul"},
	{City: "Mexico City", Country: "Mexico", Timezone: "America/Mexico_City"},
	{City: "Sao Paulo", Country: "Brazil", Timezone: "America/Sao_Paulo"},
	{City: "Johannesburg", Country: "South Africa", Timezone: "Africa/Johannesburg"},
	{City: "Moscow", Country: "Russia", Timezone: "Europe/Moscow"},
	{City: "Madrid", Country: "Spain", Timezone: "Europe/Madrid"},
	{City: "Rome", Country: "Italy", Timezone: "Europe/Rome"},
	{City: "Amsterdam", Country: "Netherlands", Timezone: "Europe/Amsterdam"},
}
