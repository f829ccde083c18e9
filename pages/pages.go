package pages

var Usage = `
<!DOCTYPE html>
<html>
<head>
    <title>pathfinder</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        code {
            background: #f4f4f4;
            padding: 2px 4px;
        }
    </style>
</head>
<body>
    <h1>pathfinder</h1>
    <p>Public Spotify metadata proxy. Accepts bare IDs, share URLs and spotify: URIs.</p>
    <ul>
        <li><code>GET /track/{id-or-url}</code> &mdash; track metadata</li>
        <li><code>GET /album/{id-or-url}?limit=&amp;offset=&amp;locale=</code> &mdash; album metadata; <code>limit=-1</code> fetches every track</li>
        <li><code>GET /playlist/{id-or-url}?limit=&amp;offset=</code> &mdash; playlist metadata; <code>limit=-1</code> fetches every item</li>
        <li><code>POST /clear</code> &mdash; clear all caches</li>
    </ul>
</body>
</html>`
