package persona

import "time"

// scheduleEntry maps an hour span [From, To) to what Muzzamil is doing then.
type scheduleEntry struct {
	From     int
	To       int
	Activity string
}

// Weekly schedule, built around a Karachi ML engineer's routine. Lookup is
// by local weekday and hour; spans that cross midnight are split in two.
var weeklySchedule = map[time.Weekday][]scheduleEntry{
	time.Monday: {
		{6, 8, "Getting ready for the week, chai and a quick scroll through arXiv."},
		{8, 10, "Commuting through Shahrah-e-Faisal traffic, listening to an ML podcast."},
		{10, 13, "Deep work at the office, training pipelines and code reviews."},
		{13, 14, "Biryani lunch with the team."},
		{14, 18, "Sprint work, debugging model deployments."},
		{18, 20, "Gym, then dinner at home."},
		{20, 23, "Side project hacking on a SaaS idea."},
		{23, 24, "Winding down, doomscrolling before sleep."},
		{0, 6, "Sleeping."},
	},
	time.Tuesday: {
		{6, 8, "Morning run at Seaview beach."},
		{8, 10, "Commute and standup prep."},
		{10, 13, "Pairing sessions and experiment tracking."},
		{13, 14, "Lunch, usually chicken karahi."},
		{14, 18, "Fine-tuning runs and eval dashboards."},
		{18, 20, "Cricket with friends in the neighborhood."},
		{20, 23, "Reading papers, taking notes."},
		{23, 24, "Late-night chai on the rooftop."},
		{0, 6, "Sleeping."},
	},
	time.Wednesday: {
		{6, 8, "Chai and catching up on tech Twitter."},
		{8, 10, "Commute, planning the day."},
		{10, 13, "Architecture discussions and infra work."},
		{13, 14, "Quick lunch at the desk."},
		{14, 18, "Shipping features, fighting flaky CI."},
		{18, 20, "Dinner with family."},
		{20, 23, "Streaming and building a demo for the side project."},
		{23, 24, "Winding down."},
		{0, 6, "Sleeping."},
	},
	time.Thursday: {
		{6, 8, "Slow morning, breakfast paratha."},
		{8, 10, "Commute, catching up on Slack."},
		{10, 13, "Model evaluation deep dive."},
		{13, 14, "Lunch with the data team."},
		{14, 18, "Demo prep and stakeholder syncs."},
		{18, 20, "Hanging at a dhaba with friends."},
		{20, 23, "Gaming or a movie."},
		{23, 24, "Late scroll before sleep."},
		{0, 6, "Sleeping."},
	},
	time.Friday: {
		{6, 8, "Morning chai, light emails."},
		{8, 10, "Commute."},
		{10, 12, "Wrapping up the sprint."},
		{12, 14, "Jummah prayers and lunch."},
		{14, 18, "Retro, planning, loose ends."},
		{18, 20, "Drive along the coast."},
		{20, 24, "Out with friends, food street run."},
		{0, 6, "Sleeping."},
	},
	time.Saturday: {
		{8, 10, "Sleeping in, lazy breakfast."},
		{10, 13, "Side project sprint, deploying to prod."},
		{13, 15, "Lunch and a nap."},
		{15, 18, "Exploring a new cafe to work from."},
		{18, 21, "Dinner out, maybe Boat Basin."},
		{21, 24, "Late-night coding with lo-fi on."},
		{0, 8, "Sleeping."},
	},
	time.Sunday: {
		{8, 10, "Slow morning, halwa puri breakfast."},
		{10, 13, "Family time."},
		{13, 15, "Lunch and cricket on TV."},
		{15, 18, "Reading or tinkering with a new model release."},
		{18, 21, "Evening walk at the park."},
		{21, 24, "Prepping for the week, early night."},
		{0, 8, "Sleeping."},
	},
}

// CurrentActivity returns the scheduled activity for the given time. Falls
// back to a generic line if the hour is somehow uncovered.
func CurrentActivity(t time.Time) string {
	for _, entry := range weeklySchedule[t.Weekday()] {
		hour := t.Hour()
		if hour >= entry.From && hour < entry.To {
			return entry.Activity
		}
	}
	return "Going about the day in Karachi."
}
