package ui

import "html/template"

var tmpl = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>One-Click Rotation</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; background: #353535; color: #fff; padding: 1.5rem; }
        .layout { display: grid; grid-template-columns: 1fr 2fr; gap: 1.5rem; max-width: 1000px; margin: 0 auto; }
        .card { background: #2b2b2b; border-radius: 8px; padding: 1rem; margin-bottom: 1rem; }
        h2 { font-size: 1rem; margin-bottom: 0.75rem; color: #2a82da; }
        ul { list-style: none; }
        li { padding: 0.4rem 0.6rem; border-radius: 4px; cursor: pointer; }
        li.selected { background: #2a82da; color: #000; }
        label { display: block; font-size: 0.85rem; margin: 0.5rem 0 0.25rem; color: #bbb; }
        input, select { width: 100%; padding: 0.4rem; background: #191919; color: #fff; border: 1px solid #555; border-radius: 4px; }
        .row { display: flex; gap: 0.5rem; margin-top: 0.75rem; }
        button { flex: 1; padding: 0.5rem; border: none; border-radius: 4px; background: #2a82da; color: #fff; cursor: pointer; }
        button.danger { background: #b33; }
        button:disabled { opacity: 0.5; cursor: default; }
        #console { background: #2b2b2b; font-family: monospace; font-size: 0.85rem; height: 360px; overflow-y: auto; padding: 0.75rem; white-space: pre-wrap; }
        #error { color: #f66; min-height: 1.2rem; margin-top: 0.5rem; font-size: 0.85rem; }
    </style>
</head>
<body>
<div class="layout">
    <div>
        <div class="card">
            <h2>Configurations</h2>
            <ul id="rotations"></ul>
            <div class="row">
                <button class="danger" id="delete" disabled>Delete Config</button>
            </div>
        </div>
        <div class="card">
            <h2>Create New Configuration</h2>
            <label for="name">Configuration Name</label>
            <input id="name" type="text" placeholder="Example: My Rotation">
            <label for="trigger">Macro Trigger Key</label>
            <select id="trigger"></select>
            <label>Action Sequence</label>
            <div id="sequence"></div>
            <div class="row">
                <button id="add-key">Add Key</button>
                <button id="remove-key">Remove Key</button>
            </div>
            <div class="row"><button id="save">Save</button></div>
            <div id="error"></div>
        </div>
    </div>
    <div>
        <h2>Console Output</h2>
        <div id="console"></div>
        <div class="row"><button id="toggle" disabled>Start Rotation</button></div>
    </div>
</div>
<script>
let keyCategories = [];
let rotations = [];
let status = { selected: -1, running: false };

function keySelect() {
    const sel = document.createElement('select');
    keyCategories.forEach(c => {
        const group = document.createElement('optgroup');
        group.label = c.name;
        c.keys.forEach(k => {
            const opt = document.createElement('option');
            opt.value = k; opt.textContent = k;
            group.appendChild(opt);
        });
        sel.appendChild(group);
    });
    return sel;
}

function showError(msg) { document.getElementById('error').textContent = msg || ''; }

async function api(method, path, body) {
    const opts = { method: method, headers: {} };
    if (method !== 'GET') {
        opts.headers['Content-Type'] = 'application/json';
    }
    if (body !== undefined) {
        opts.body = JSON.stringify(body);
    }
    const resp = await fetch(path, opts);
    const data = await resp.json().catch(() => ({}));
    if (!resp.ok) throw new Error(data.error || resp.statusText);
    return data;
}

function render() {
    const list = document.getElementById('rotations');
    list.innerHTML = '';
    rotations.forEach((r, i) => {
        const li = document.createElement('li');
        li.textContent = r.name + '  (' + r.trigger + ': ' + r.sequence.join(' ') + ')';
        if (i === status.selected) li.className = 'selected';
        li.onclick = () => api('POST', '/api/select?index=' + i).then(s => { status = s; render(); }).catch(e => showError(e.message));
        list.appendChild(li);
    });
    document.getElementById('delete').disabled = status.selected < 0;
    const toggle = document.getElementById('toggle');
    toggle.disabled = status.selected < 0 && !status.running;
    toggle.textContent = status.running ? 'Stop Rotation' : 'Start Rotation';
}

function appendLine(line) {
    const el = document.getElementById('console');
    el.textContent += line + '\n';
    el.scrollTop = el.scrollHeight;
}

async function refresh() {
    rotations = await api('GET', '/api/rotations');
    status = await api('GET', '/api/status');
    render();
}

function connect() {
    const ws = new WebSocket('ws://' + location.host + '/ws');
    ws.onmessage = ev => {
        const msg = JSON.parse(ev.data);
        if (msg.type === 'console') appendLine(msg.payload.line);
        if (msg.type === 'status') { status = msg.payload; render(); }
        if (msg.type === 'rotations') { rotations = msg.payload || []; render(); }
    };
    ws.onclose = () => setTimeout(connect, 2000);
}

document.getElementById('add-key').onclick = () => document.getElementById('sequence').appendChild(keySelect());
document.getElementById('remove-key').onclick = () => {
    const seq = document.getElementById('sequence');
    if (seq.children.length > 1) seq.removeChild(seq.lastChild);
};
document.getElementById('save').onclick = async () => {
    const rotation = {
        name: document.getElementById('name').value,
        trigger: document.getElementById('trigger').value,
        sequence: Array.from(document.getElementById('sequence').children).map(s => s.value),
    };
    try {
        await api('POST', '/api/rotations', rotation);
        document.getElementById('name').value = '';
        showError('');
        await refresh();
    } catch (e) { showError(e.message); }
};
document.getElementById('delete').onclick = async () => {
    try { await api('DELETE', '/api/rotations?index=' + status.selected); await refresh(); }
    catch (e) { showError(e.message); }
};
document.getElementById('toggle').onclick = async () => {
    try { status = await api('POST', '/api/toggle'); render(); }
    catch (e) { showError(e.message); }
};

(async () => {
    keyCategories = await api('GET', '/api/keys');
    const trigger = keySelect();
    trigger.id = 'trigger';
    document.getElementById('trigger').replaceWith(trigger);
    document.getElementById('sequence').appendChild(keySelect());
    await refresh();
    connect();
})();
</script>
</body>
</html>`))
