package ui

const (
	PageTitle   = "Real-Time Flight Tracker"
	PageCaption = "Tracking active flights from your schedule using OpenSky Network"
)

const baseTemplate = `
{{define "base"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>{{.Title}}</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <script src="https://unpkg.com/htmx.org@1.9.12"></script>
    <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
    <link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css">
    <link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css">
    <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
    <script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
</head>
<body class="bg-gray-50 text-gray-900">
{{template "dashboard" .}}
</body>
</html>{{end}}
`

const dashboardTemplate = `
{{define "dashboard"}}
<div class="flex min-h-screen">
    <!-- Sidebar: options -->
    <aside class="w-64 shrink-0 bg-white border-r border-gray-200 p-4">
        <h2 class="text-sm font-semibold uppercase tracking-wide text-gray-600 mb-4">Options</h2>
        {{template "refresh-rate" .Settings}}
    </aside>

    <main class="flex-1 p-6">
        <h1 class="text-3xl font-bold">🛫 {{.Title}}</h1>
        <p class="text-sm text-gray-500 mb-6">{{.Caption}}</p>

        {{template "flights" .Flights}}

        <div id="map" class="w-full rounded-lg border border-gray-200 shadow-md mt-6{{if not .Flights.ShowMap}} hidden{{end}}" style="height: 500px;"></div>
    </main>
</div>

<script>
(function () {
    const map = L.map('map').setView([{{.Map.CenterLat}}, {{.Map.CenterLon}}], {{.Map.Zoom}});
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
        attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);
    const cluster = L.markerClusterGroup().addTo(map);

    // labels come from schedule data, so they are inserted as text only
    function textNode(text) {
        const el = document.createElement('span');
        text.split('\n').forEach(function (line, i) {
            if (i > 0) el.appendChild(document.createElement('br'));
            el.appendChild(document.createTextNode(line));
        });
        return el;
    }

    function renderMarkers() {
        const panel = document.getElementById('flights');
        if (!panel) return;
        const mapEl = document.getElementById('map');
        const show = panel.dataset.showMap === 'true';
        const wasHidden = mapEl.classList.contains('hidden');
        mapEl.classList.toggle('hidden', !show);
        if (show && wasHidden) map.invalidateSize();

        const markers = JSON.parse(panel.dataset.markers || '[]');
        cluster.clearLayers();
        markers.forEach(function (m) {
            L.marker([m.lat, m.lon])
                .bindTooltip(textNode(m.label))
                .bindPopup(textNode(m.popup))
                .addTo(cluster);
        });
    }

    renderMarkers();
    document.body.addEventListener('htmx:afterSwap', renderMarkers);
})();
</script>
{{end}}

{{define "refresh-rate"}}
<form id="refresh-rate" hx-post="/dashboard/refresh-rate" hx-trigger="change" hx-swap="outerHTML">
    <label for="refresh_rate" class="block text-sm text-gray-700 mb-2">
        Refresh rate (sec): <span class="font-semibold">{{.RefreshRate}}</span>
    </label>
    <input type="range" id="refresh_rate" name="refresh_rate"
           min="{{.MinRate}}" max="{{.MaxRate}}" step="1" value="{{.RefreshRate}}" class="w-full">
    {{if .Error}}<p class="text-xs text-red-600 mt-2">{{.Error}}</p>{{end}}
</form>
{{end}}
`
