package handler

// dashboardPage is the single-page dashboard. It renders whatever /dashboard/events
// pushes and shows action notices with alert().
const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Hotel Review Dataset Generator</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: #f3f4f6;
            min-height: 100vh;
            padding: 2rem;
            color: #111827;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        .card {
            background: white;
            border-radius: 12px;
            padding: 1.5rem;
            box-shadow: 0 4px 16px rgba(0,0,0,0.08);
            margin-bottom: 1.5rem;
        }
        .grid { display: grid; gap: 1.5rem; }
        .grid-2 { grid-template-columns: repeat(auto-fit, minmax(320px, 1fr)); }
        .grid-3 { grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); }
        .grid .card { margin-bottom: 0; }
        h1 { font-size: 1.8rem; margin-bottom: 0.5rem; }
        h2 { font-size: 1.2rem; margin-bottom: 1rem; }
        h3 { font-size: 1.05rem; margin-bottom: 0.75rem; }
        .subtitle { color: #4b5563; }
        .form-group { margin-bottom: 1rem; }
        label { display: block; margin-bottom: 0.4rem; color: #374151; font-size: 0.9rem; }
        input[type="number"] {
            width: 100%;
            padding: 0.6rem;
            border: 2px solid #e5e7eb;
            border-radius: 8px;
            font-size: 1rem;
        }
        input:focus { outline: none; border-color: #2563eb; }
        input:disabled { background: #f9fafb; color: #9ca3af; }
        button {
            width: 100%;
            padding: 0.7rem;
            color: white;
            border: none;
            border-radius: 8px;
            font-size: 1rem;
            font-weight: 600;
            cursor: pointer;
            margin-bottom: 0.75rem;
        }
        button:disabled { background: #d1d5db !important; color: #6b7280; cursor: not-allowed; }
        .btn-start { background: #2563eb; }
        .btn-sample { background: #16a34a; }
        .btn-aspects { background: #9333ea; }
        .btn-batch { background: #ea580c; }
        .row { display: flex; justify-content: space-between; font-size: 0.9rem; color: #4b5563; margin-bottom: 0.3rem; }
        .bar { width: 100%; height: 8px; background: #e5e7eb; border-radius: 999px; margin-bottom: 1rem; }
        .bar-fill { height: 8px; background: #2563eb; border-radius: 999px; width: 0%; transition: width 0.3s; }
        .field { margin-bottom: 0.8rem; }
        .field span { font-size: 0.85rem; color: #4b5563; }
        .field p { font-weight: 500; }
        .files { color: #16a34a; }
        .panel { background: #f9fafb; padding: 0.75rem; border-radius: 6px; font-size: 0.85rem; }
        .panel p { margin-bottom: 0.4rem; }
        .scroll { max-height: 8rem; overflow-y: auto; }
        .tag { display: inline-block; background: #dbeafe; color: #1e40af; padding: 0.15rem 0.5rem; border-radius: 4px; margin: 0 0.25rem 0.25rem 0; font-size: 0.75rem; }
        .aspects-line { color: #2563eb; }
        .problems-line { color: #dc2626; }
        .hidden { display: none; }
        .conn { font-size: 0.8rem; color: #9ca3af; margin-top: 0.5rem; }
    </style>
</head>
<body>
    <div class="container">
        <div class="card">
            <h1>Hotel Review Dataset Generator</h1>
            <p class="subtitle">Generate balanced negative hotel reviews for AI training</p>
            <p class="conn" id="conn">connecting...</p>
        </div>

        <div class="grid grid-2">
            <div class="card">
                <h2>Generation Settings</h2>
                <div class="form-group">
                    <label for="totalReviews">Total Reviews</label>
                    <input type="number" id="totalReviews" min="1">
                </div>
                <div class="form-group">
                    <label for="chunkSize">Reviews per File</label>
                    <input type="number" id="chunkSize" min="1">
                </div>
                <button class="btn-start" id="startBtn" onclick="startGeneration()">Start Generation</button>
            </div>

            <div class="card">
                <h2>Generation Status</h2>
                <div class="row"><span>Progress</span><span id="progressText">0%</span></div>
                <div class="bar"><div class="bar-fill" id="progressBar"></div></div>
                <div class="field"><span>Current Phase:</span><p id="phase">Not started</p></div>
                <div class="field"><span>Reviews Generated:</span><p id="generated">0 / 0</p></div>
                <div class="field hidden" id="filesField"><span>Files Created:</span><p class="files" id="files"></p></div>
            </div>
        </div>

        <div class="grid grid-3" style="margin-top: 1.5rem;">
            <div class="card">
                <h3>Sample Review</h3>
                <button class="btn-sample" onclick="runAction('sample')">Generate Sample</button>
                <div class="panel hidden" id="samplePanel"></div>
            </div>
            <div class="card">
                <h3>Covered Aspects</h3>
                <button class="btn-aspects" onclick="runAction('aspects')">View Aspects</button>
                <div class="panel scroll hidden" id="aspectsPanel"></div>
            </div>
            <div class="card">
                <h3>Test Batch</h3>
                <button class="btn-batch" id="batchBtn" onclick="runAction('test-batch')">Generate Test Batch</button>
                <div class="panel hidden" id="batchPanel"></div>
            </div>
        </div>
    </div>

    <script>
        var editing = false;

        function el(id) { return document.getElementById(id); }

        function para(text, cls) {
            var p = document.createElement('p');
            p.textContent = text;
            if (cls) p.className = cls;
            return p;
        }

        function fill(panel, nodes) {
            panel.innerHTML = '';
            nodes.forEach(function(n) { panel.appendChild(n); });
            panel.classList.remove('hidden');
        }

        function render(view) {
            el('progressText').textContent = view.progress;
            el('progressBar').style.width = view.progress;
            el('phase').textContent = view.phase;
            el('generated').textContent = view.reviews_generated;

            el('filesField').classList.toggle('hidden', !view.show_files);
            el('files').textContent = view.files_created + ' files';

            el('totalReviews').disabled = view.inputs_locked;
            el('chunkSize').disabled = view.inputs_locked;
            if (!editing) {
                el('totalReviews').value = view.settings.total_reviews;
                el('chunkSize').value = view.settings.chunk_size;
            }
            el('startBtn').disabled = view.inputs_locked;
            el('startBtn').textContent = view.start_label;
            el('batchBtn').textContent = 'Generate ' + view.test_batch_size + ' Reviews';

            if (view.sample) {
                var s = view.sample;
                fill(el('samplePanel'), [
                    para('Review ' + s.review_id + ':'),
                    para('"' + s.review_text + '"'),
                    para('Aspects: ' + (s.aspects || []).join(', '), 'aspects-line'),
                    para('Problems: ' + (s.problems || []).join(' | '), 'problems-line')
                ]);
            }

            if (view.aspects) {
                var nodes = [para('Total: ' + view.aspects.total + ' aspects')];
                var tags = document.createElement('div');
                (view.aspects.names || []).forEach(function(name) {
                    var t = document.createElement('span');
                    t.className = 'tag';
                    t.textContent = name;
                    tags.appendChild(t);
                });
                nodes.push(tags);
                fill(el('aspectsPanel'), nodes);
            }

            if (view.test_batch) {
                var b = view.test_batch;
                var list = document.createElement('div');
                list.className = 'scroll';
                (b.sample || []).forEach(function(r) {
                    list.appendChild(para(r.review_id + ': "' + r.review_text + '"'));
                });
                fill(el('batchPanel'), [para(b.message), para('File: ' + b.file, 'aspects-line'), list]);
            }
        }

        function request(method, url, body) {
            var opts = { method: method, headers: { 'Content-Type': 'application/json' } };
            if (body) opts.body = JSON.stringify(body);
            return fetch(url, opts).then(function(res) {
                return res.json().then(function(data) { return { status: res.status, data: data }; });
            });
        }

        function handleAction(res) {
            if (res.status !== 200) {
                alert(res.data.error || 'Request failed');
                return;
            }
            if (res.data.notice) alert(res.data.notice.message);
            render(res.data.view);
        }

        function saveSettings() {
            editing = false;
            var body = {
                total_reviews: parseInt(el('totalReviews').value, 10),
                chunk_size: parseInt(el('chunkSize').value, 10)
            };
            return request('PUT', '/dashboard/settings', body).then(function(res) {
                if (res.status !== 200) {
                    alert(res.data.error || 'Invalid settings');
                    return false;
                }
                render(res.data);
                return true;
            });
        }

        function startGeneration() {
            saveSettings().then(function(ok) {
                if (!ok) return;
                return request('POST', '/dashboard/actions/start').then(handleAction);
            }).catch(function() { alert('Error starting generation'); });
        }

        function runAction(name) {
            request('POST', '/dashboard/actions/' + name).then(handleAction)
                .catch(function() { alert('Request failed'); });
        }

        ['totalReviews', 'chunkSize'].forEach(function(id) {
            el(id).addEventListener('input', function() { editing = true; });
            el(id).addEventListener('change', function() { saveSettings(); });
        });

        function connect() {
            var source = new EventSource('/dashboard/events');
            source.addEventListener('state', function(e) {
                el('conn').textContent = 'live';
                render(JSON.parse(e.data));
            });
            source.onerror = function() {
                el('conn').textContent = 'reconnecting...';
            };
        }

        request('GET', '/dashboard/state').then(function(res) { render(res.data); });
        connect();
    </script>
</body>
</html>`
