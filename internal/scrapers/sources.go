package scrapers

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"thewherewhat/internal/models"
)

// EventSource yields candidate bot events on demand. Sources are independent
// of and upstream of the importer's dedup logic.
type EventSource interface {
	Name() string
	Events(ctx context.Context) ([]models.BotEvent, error)
}

// Venue is a geocoded venue a source generates events at.
type Venue struct {
	Name string
	Lat  float64
	Lng  float64
}

// generatedSource produces mock events at real geocoded venues. Venue
// geocoding happens once, lazily, and is memoized for the life of the
// source.
type generatedSource struct {
	name           string
	city           string
	venueNames     []string
	eventTypes     []string
	captionTag     string
	eventURL       string
	eventsPerCycle int
	maxLeadTime    time.Duration
	minDuration    time.Duration
	maxDuration    time.Duration

	geocoder VenueGeocoder

	mu       sync.Mutex
	venues   []Venue
	resolved bool
}

func (s *generatedSource) Name() string {
	return s.name
}

// ensureVenuesGeocoded resolves the venue list on first use. Individual
// lookup failures are logged and skipped; the source works with whatever
// resolved.
func (s *generatedSource) ensureVenuesGeocoded(ctx context.Context) ([]Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolved {
		return s.venues, nil
	}

	log.Printf("Geocoding %s venues...", s.name)
	for _, venueName := range s.venueNames {
		location, err := s.geocoder.GeocodeVenue(ctx, venueName, s.city)
		if err != nil {
			if ctx.Err() != nil {
				// Do not mark resolved; retry the rest next cycle.
				return s.venues, ctx.Err()
			}
			log.Printf("Failed to geocode %s: %v", venueName, err)
			continue
		}
		if location == nil {
			continue
		}
		s.venues = append(s.venues, Venue{
			Name: strings.TrimSuffix(venueName, " "+s.city),
			Lat:  location.Lat,
			Lng:  location.Lng,
		})
	}

	s.resolved = true
	log.Printf("Geocoded %d %s venues", len(s.venues), s.name)
	return s.venues, nil
}

// Events generates up to eventsPerCycle mock events, at most one per venue.
func (s *generatedSource) Events(ctx context.Context) ([]models.BotEvent, error) {
	venues, err := s.ensureVenuesGeocoded(ctx)
	if err != nil {
		return nil, err
	}
	if len(venues) == 0 {
		return nil, fmt.Errorf("no %s venues geocoded yet", s.name)
	}

	now := time.Now()
	usedVenues := make(map[string]bool)
	var events []models.BotEvent

	for i := 0; i < s.eventsPerCycle && len(usedVenues) < len(venues); i++ {
		venue := venues[rand.Intn(len(venues))]

		venueKey := fmt.Sprintf("%f,%f", venue.Lat, venue.Lng)
		if usedVenues[venueKey] {
			continue
		}
		usedVenues[venueKey] = true

		eventType := s.eventTypes[rand.Intn(len(s.eventTypes))]

		start := now.Add(time.Duration(rand.Float64() * float64(s.maxLeadTime)))
		duration := s.minDuration + time.Duration(rand.Float64()*float64(s.maxDuration-s.minDuration))
		end := start.Add(duration)

		// Small jitter (±10m) so repeated events at one venue don't stack.
		latOffset := (rand.Float64() - 0.5) * 0.0002
		lngOffset := (rand.Float64() - 0.5) * 0.0002

		events = append(events, models.BotEvent{
			Title:        eventType + " @ " + venue.Name,
			Caption:      start.Format("Mon Jan 2, 3:04 PM") + " • " + s.captionTag,
			Lat:          venue.Lat + latOffset,
			Lng:          venue.Lng + lngOffset,
			Source:       s.name,
			EventURL:     s.eventURL,
			EventDate:    &start,
			EventEndDate: &end,
		})
	}

	return events, nil
}

// NewEventbriteSource generates nightlife and culture events at well-known
// Amsterdam venues, tagged "eventbrite".
func NewEventbriteSource(geocoder VenueGeocoder, city string) EventSource {
	return &generatedSource{
		name: "eventbrite",
		city: city,
		venueNames: []string{
			"Paradiso " + city,
			"Melkweg " + city,
			"De School " + city,
			"AFAS Live " + city,
			"Muziekgebouw aan 't IJ " + city,
			"Ziggo Dome " + city,
			"Tolhuistuin " + city,
			"Wonzimer " + city,
			"De Marktkantine " + city,
			"Canvas " + city,
			"Shelter " + city,
			"Claire " + city,
			"Radion " + city,
			"De Nieuwe Anita " + city,
			"OT301 " + city,
			"Bitterzoet " + city,
			"AIR " + city,
			"Chicago Social Club " + city,
			"Chin Chin Club " + city,
			"De Duivel " + city,
		},
		eventTypes: []string{
			"Live Music", "DJ Set", "Techno Night", "Jazz Session",
			"Stand-up Comedy", "Art Exhibition", "Food Market", "Meetup",
			"Workshop", "Film Screening", "Poetry Slam", "Open Mic Night",
			"Dance Performance", "Indie Concert", "Hip Hop Night",
		},
		captionTag:     "Upcoming event in " + city,
		eventURL:       "https://www.eventbrite.com/",
		eventsPerCycle: 15,
		maxLeadTime:    7 * 24 * time.Hour,
		minDuration:    2 * time.Hour,
		maxDuration:    8 * time.Hour,
		geocoder:       geocoder,
	}
}

// NewStudentSource generates student association events at campus venues,
// tagged "student".
func NewStudentSource(geocoder VenueGeocoder, city string) EventSource {
	return &generatedSource{
		name: "student",
		city: city,
		venueNames: []string{
			"CREA " + city,
			"ASVA Student Union " + city,
			"USC " + city,
			"VU Student Centre " + city,
			"UvA Roeterseiland " + city,
			"UvA Science Park " + city,
			"Pakhuis de Zwijger " + city,
			"Studio K " + city,
			"Mezrab " + city,
			"Aula UvA " + city,
		},
		eventTypes: []string{
			"Study Session", "Student Party", "Board Game Night", "Quiz Night",
			"Pub Crawl", "Language Exchange", "Workshop", "Career Fair",
			"Guest Lecture", "Open Mic", "Movie Night", "Debate Night",
			"Networking Drinks", "Sports Tournament", "Volunteer Day",
		},
		captionTag:     "Student event",
		eventURL:       "https://www.facebook.com/events/",
		eventsPerCycle: 8,
		maxLeadTime:    3 * 24 * time.Hour,
		minDuration:    90 * time.Minute,
		maxDuration:    330 * time.Minute,
		geocoder:       geocoder,
	}
}

// NewCommunitySource generates meetup-style events at community spaces,
// tagged "community".
func NewCommunitySource(geocoder VenueGeocoder, city string) EventSource {
	return &generatedSource{
		name: "community",
		city: city,
		venueNames: []string{
			"Impact Hub " + city,
			"Spaces Vijzelstraat " + city,
			"B. " + city,
			"Volkshotel " + city,
			"A Lab " + city,
			"De Ceuvel " + city,
			"Mediamatic " + city,
			"Het HEM " + city,
			"Pllek " + city,
			"Ndsm Wharf " + city,
			"Foodhallen " + city,
			"Westergasfabriek " + city,
		},
		eventTypes: []string{
			"Tech Meetup", "Startup Pitch Night", "Yoga Session",
			"Meditation Circle", "Cooking Workshop", "Photography Walk",
			"Book Club", "Running Club", "Chess Meetup", "Boardgame Cafe",
			"Knitting Circle", "Language Cafe", "Improv Workshop",
			"Bitcoin Meetup", "Sustainability Talk",
		},
		captionTag:     "Community event",
		eventURL:       "https://www.meetup.com/",
		eventsPerCycle: 8,
		maxLeadTime:    5 * 24 * time.Hour,
		minDuration:    1 * time.Hour,
		maxDuration:    4 * time.Hour,
		geocoder:       geocoder,
	}
}
