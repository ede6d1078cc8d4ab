package render

const documentTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8"/>
<meta name="viewport" content="width=device-width, initial-scale=1.0"/>
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.css"/>
<link rel="stylesheet" href="https://unpkg.com/leaflet.markercluster@1.5.3/dist/MarkerCluster.Default.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.markercluster@1.5.3/dist/leaflet.markercluster.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<style>
html, body { height: 100%; margin: 0; }
#map { height: 100%; width: 100%; }
.count-badge { background: none; border: none; }
.atlas-legend {
  position: fixed;
  bottom: 50px;
  left: 50px;
  width: 230px;
  background-color: white;
  border: 2px solid grey;
  border-radius: 4px;
  z-index: 9999;
  font-size: 14px;
  font-family: Arial, sans-serif;
  padding: 10px;
}
</style>
</head>
<body>
<div id="map"></div>
<div class="atlas-legend">
  <b>Heatmap Legend</b><br>
  <span style="color:red;">&#9679;</span> High concentration<br>
  <span style="color:orange;">&#9679;</span> Elevated<br>
  <span style="color:yellow;">&#9679;</span> Moderate<br>
  <span style="color:green;">&#9679;</span> Sparse<br>
  <small>Updated {{.GeneratedAt}}</small>
</div>
<script>
var regionsData = {{toJSON .Regions}};
var provincesData = {{toJSON .Provinces}};
var regionBadges = {{toJSON .RegionBadges}};
var provinceBadges = {{toJSON .ProvinceBadges}};
var bundles = {{toJSON .Bundles}};
var plan = {{toJSON .Plan}};
var heatOptions = {{toJSON .Heat}};

var map = L.map('map').setView({{toJSON .Center}}, {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors'
}).addTo(map);

var overlays = {};

function badgeLayer(items) {
  var group = L.featureGroup();
  items.forEach(function (b) {
    var icon = L.divIcon({
      className: 'count-badge',
      iconSize: [46, 46],
      iconAnchor: [23, 23],
      html: '<div style="width:46px;height:46px;border-radius:50%;background:' + b.color +
        ';opacity:0.85;color:white;font-weight:bold;font-size:13px;border:2px solid white;' +
        'display:flex;align-items:center;justify-content:center;pointer-events:none;">' +
        b.count + '</div>'
    });
    L.marker([b.lat, b.lon], { icon: icon, interactive: false })
      .bindTooltip(b.name + ': ' + b.count + ' sites')
      .addTo(group);
  });
  return group;
}

overlays['region-counts'] = badgeLayer(regionBadges);
Object.keys(provinceBadges).forEach(function (region) {
  overlays['province-counts:' + region] = badgeLayer(provinceBadges[region]);
});

bundles.forEach(function (b) {
  var group = L.featureGroup();
  L.heatLayer(b.heat, heatOptions).addTo(group);
  var cluster = L.markerClusterGroup();
  b.sites.forEach(function (s) {
    L.marker([s.lat, s.lon]).bindPopup(
      '<b>Site:</b> ' + s.site + '<br>' +
      '<b>User:</b> ' + s.user + '<br>' +
      '<b>Category:</b> ' + s.category + '<br>' +
      '<b>Province:</b> ' + s.province
    ).addTo(cluster);
  });
  cluster.addTo(group);
  overlays['sites:' + b.province] = group;
});

var provinceLayer = L.geoJSON(provincesData, {
  style: function () {
    return { color: '#555555', weight: 0, fillColor: '#888888', fillOpacity: 0 };
  },
  onEachFeature: function (feature, layer) {
    layer.bindTooltip(feature.properties.name + ' (' + feature.properties.region + ')');
    layer.on('click', function () {
      provinceLayer.bringToFront();
      dispatch('province:' + feature.properties.name);
    });
  }
}).addTo(map);

var regionLayer = L.geoJSON(regionsData, {
  style: function (feature) {
    return {
      color: feature.properties.color,
      fillColor: feature.properties.color,
      weight: 2,
      fillOpacity: 0.25
    };
  },
  onEachFeature: function (feature, layer) {
    layer.bindTooltip(feature.properties.name);
    layer.on('click', function () {
      provinceLayer.bringToFront();
      dispatch('region:' + feature.properties.name);
    });
  }
}).addTo(map);

function styleProvinces(activeRegion) {
  provinceLayer.eachLayer(function (layer) {
    var active = layer.feature.properties.region === activeRegion;
    layer.setStyle({
      weight: active ? 1 : 0,
      fillOpacity: active ? 0.35 : 0
    });
  });
}

function applyEffects(effects) {
  effects.forEach(function (e) {
    var layer;
    switch (e.op) {
      case 'hide':
        layer = overlays[e.layer];
        if (layer && map.hasLayer(layer)) { map.removeLayer(layer); }
        break;
      case 'show':
        layer = overlays[e.layer];
        if (layer && !map.hasLayer(layer)) { map.addLayer(layer); }
        break;
      case 'style-boundaries':
        styleProvinces(e.region || null);
        break;
      case 'fit-bounds':
        map.fitBounds(e.bounds);
        break;
      case 'set-view':
        map.setView(e.center, e.zoom);
        break;
    }
  });
}

function dispatch(key) {
  var effects = plan[key];
  if (effects) { applyEffects(effects); }
}

var BackControl = L.Control.extend({
  options: { position: 'topright' },
  onAdd: function () {
    var container = L.DomUtil.create('div', 'leaflet-bar leaflet-control');
    container.style.backgroundColor = 'white';
    container.style.padding = '6px 10px';
    container.style.cursor = 'pointer';
    container.style.fontSize = '14px';
    container.innerHTML = '{{.BackLabel}}';
    L.DomEvent.disableClickPropagation(container);
    container.onclick = function () { dispatch('back'); };
    return container;
  }
});
map.addControl(new BackControl());

dispatch('back');
</script>
</body>
</html>
`
